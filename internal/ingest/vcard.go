package ingest

import "strings"

// numberNotFound is the placeholder used when a vCard record carries no
// parseable phone number. Malformed cards degrade instead of failing.
const numberNotFound = "(number not found)"

// FlattenVCard renders one vCard record as "name: number". The name falls
// back to the FN line at its fixed offset when no display name is given; the
// number is the substring bounded by "waid=" and the following ":".
func FlattenVCard(displayName, vcard string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = vcardName(vcard)
	}
	return name + ": " + vcardNumber(vcard)
}

func vcardName(vcard string) string {
	lines := strings.Split(vcard, "\n")
	if len(lines) > 2 {
		fn := strings.TrimSpace(lines[2])
		if rest, ok := strings.CutPrefix(fn, "FN:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "FN:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func vcardNumber(vcard string) string {
	i := strings.Index(vcard, "waid=")
	if i < 0 {
		return numberNotFound
	}
	rest := vcard[i+len("waid="):]
	j := strings.Index(rest, ":")
	if j <= 0 {
		return numberNotFound
	}
	return rest[:j]
}
