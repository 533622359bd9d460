package wanet

import "testing"

func TestNormalizeJID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"5511999999999@s.whatsapp.net", "5511999999999@s.whatsapp.net"},
		{"5511999999999:12@s.whatsapp.net", "5511999999999@s.whatsapp.net"},
		{"5511999999999.0:1@s.whatsapp.net", "5511999999999@s.whatsapp.net"},
		{"1203630000000000@g.us", "1203630000000000@g.us"},
		{"no-at-sign", "no-at-sign"},
	}
	for _, tt := range tests {
		if got := NormalizeJID(tt.in); got != tt.want {
			t.Errorf("NormalizeJID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsGroupJID(t *testing.T) {
	t.Parallel()

	if !IsGroupJID("1203630000000000@g.us") {
		t.Errorf("group jid not detected")
	}
	if IsGroupJID("5511999999999@s.whatsapp.net") {
		t.Errorf("user jid detected as group")
	}
	if IsGroupJID(StatusBroadcastJID) {
		t.Errorf("status broadcast detected as group")
	}
}

func TestDigitsAndUserJID(t *testing.T) {
	t.Parallel()

	if got := Digits("+55 (11) 98888-7777"); got != "5511988887777" {
		t.Errorf("Digits() = %q", got)
	}
	if got := UserJID("+55 11 98888-7777"); got != "5511988887777@s.whatsapp.net" {
		t.Errorf("UserJID() = %q", got)
	}
}
