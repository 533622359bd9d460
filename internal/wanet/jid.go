package wanet

import "strings"

// StatusBroadcastJID is the pseudo-chat carrying status updates.
const StatusBroadcastJID = "status@broadcast"

const (
	userSuffix  = "@s.whatsapp.net"
	groupSuffix = "@g.us"
)

// IsGroupJID reports whether the JID addresses a group chat.
func IsGroupJID(jid string) bool {
	return strings.HasSuffix(jid, groupSuffix)
}

// NormalizeJID strips the device/agent part of a JID so the same user always
// maps to one identifier: "5511999999999:12@s.whatsapp.net" becomes
// "5511999999999@s.whatsapp.net".
func NormalizeJID(jid string) string {
	at := strings.LastIndex(jid, "@")
	if at < 0 {
		return jid
	}
	user := jid[:at]
	if i := strings.IndexAny(user, ":."); i >= 0 {
		user = user[:i]
	}
	return user + jid[at:]
}

// Digits returns only the numeric characters of a JID or phone string.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UserJID builds a normalized user JID from a bare phone number.
func UserJID(number string) string {
	return Digits(number) + userSuffix
}
