package ticket

import (
	"hash/fnv"
	"sync"
)

// KeyedMutex is a striped lock pool. Resolution for one
// (contact, connection, company) key serializes on its stripe only, so
// unrelated tenants never contend on a process-wide mutex.
type KeyedMutex struct {
	stripes []sync.Mutex
}

const defaultStripes = 64

func NewKeyedMutex(stripes int) *KeyedMutex {
	if stripes <= 0 {
		stripes = defaultStripes
	}
	return &KeyedMutex{stripes: make([]sync.Mutex, stripes)}
}

// Lock acquires the stripe for the key and returns its unlock func.
func (m *KeyedMutex) Lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &m.stripes[int(h.Sum32())%len(m.stripes)]
	mu.Lock()
	return mu.Unlock
}
