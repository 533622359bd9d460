package ingest

import "testing"

const sampleVCard = "BEGIN:VCARD\nVERSION:3.0\nFN:Maria Silva\nTEL;type=CELL;waid=5511988887777:+55 11 98888-7777\nEND:VCARD"

func TestFlattenVCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		displayName string
		vcard       string
		want        string
	}{
		{
			name:        "display name wins",
			displayName: "Maria",
			vcard:       sampleVCard,
			want:        "Maria: 5511988887777",
		},
		{
			name:  "fn line fallback",
			vcard: sampleVCard,
			want:  "Maria Silva: 5511988887777",
		},
		{
			name:        "missing waid",
			displayName: "João",
			vcard:       "BEGIN:VCARD\nVERSION:3.0\nFN:João\nEND:VCARD",
			want:        "João: (number not found)",
		},
		{
			name:        "waid without terminator",
			displayName: "X",
			vcard:       "waid=551199",
			want:        "X: (number not found)",
		},
		{
			name:  "malformed card degrades",
			vcard: "garbage",
			want:  ": (number not found)",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FlattenVCard(tt.displayName, tt.vcard); got != tt.want {
				t.Fatalf("FlattenVCard() = %q, want %q", got, tt.want)
			}
		})
	}
}
