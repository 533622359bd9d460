package flow

import (
	"strings"
	"testing"

	"github.com/zapdesk/zapdesk/internal/db/sqlc"
)

func TestParseWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		start int
		end   int
		ok    bool
	}{
		{"08:00-18:00", 480, 1080, true},
		{"00:00-23:59", 0, 1439, true},
		{"22:00-06:00", 1320, 360, true},
		{"8:5-9:30", 485, 570, true},
		{"24:00-18:00", 0, 0, false},
		{"08:00-18:75", 0, 0, false},
		{"whenever", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		start, end, ok := parseWindow(tt.in)
		if ok != tt.ok || start != tt.start || end != tt.end {
			t.Errorf("parseWindow(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tt.in, start, end, ok, tt.start, tt.end, tt.ok)
		}
	}
}

func TestRenderTextMenu(t *testing.T) {
	t.Parallel()

	steps := []sqlc.ChatbotStep{
		{Title: "Financeiro"},
		{Title: "Suporte"},
	}
	got := renderTextMenu(steps)

	if !strings.Contains(got, "*[ 1 ]* - Financeiro") {
		t.Errorf("first option missing:\n%s", got)
	}
	if !strings.Contains(got, "*[ 2 ]* - Suporte") {
		t.Errorf("second option missing:\n%s", got)
	}
	if !strings.Contains(got, "*[ # ]* - Menu inicial") {
		t.Errorf("main menu footer missing:\n%s", got)
	}
	if !strings.Contains(got, "*[ Sair ]* - Encerrar atendimento") {
		t.Errorf("exit footer missing:\n%s", got)
	}
}
