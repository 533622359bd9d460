package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

// Menu display modes selected by the chatBotType setting.
const (
	DisplayText   = "text"
	DisplayButton = "button"
	DisplayList   = "list"
)

// Interactive buttons cap out at four options on the wire; longer menus fall
// back to text.
const maxButtons = 4

// sendStepMenu renders a step menu in the company's configured display mode
// and persists its text rendering as the outbound message body.
func (s *Service) sendStepMenu(ctx context.Context, in Input, steps []sqlc.ChatbotStep) error {
	mode := s.displayMode(ctx, in)
	rendered := renderTextMenu(steps)

	var out wanet.Outbound
	switch {
	case mode == DisplayButton && len(steps) <= maxButtons:
		out.Text = "Escolha uma opção:"
		for i, st := range steps {
			out.Buttons = append(out.Buttons, wanet.Button{
				ID:    strconv.Itoa(i + 1),
				Title: st.Title,
			})
		}
	case mode == DisplayList:
		rows := make([]wanet.ListRow, 0, len(steps))
		for i, st := range steps {
			rows = append(rows, wanet.ListRow{
				ID:          strconv.Itoa(i + 1),
				Title:       st.Title,
				Description: st.Message,
			})
		}
		out.Text = "Escolha uma opção:"
		out.List = &wanet.ListSpec{
			Title:      "Menu",
			ButtonText: "Opções",
			Rows:       rows,
		}
	default:
		out.Text = rendered
	}

	key, err := in.Sender.Send(ctx, in.Contact.Jid, out)
	if err != nil {
		return fmt.Errorf("send menu to %s: %w", in.Contact.Jid, err)
	}
	return s.persistOutbound(ctx, in, key, rendered, "", "")
}

func renderTextMenu(steps []sqlc.ChatbotStep) string {
	var b strings.Builder
	for i, st := range steps {
		fmt.Fprintf(&b, "*[ %d ]* - %s\n", i+1, st.Title)
	}
	b.WriteString("\n*[ # ]* - Menu inicial\n*[ Sair ]* - Encerrar atendimento")
	return b.String()
}

func (s *Service) displayMode(ctx context.Context, in Input) string {
	setting, err := s.queries.GetSetting(ctx, sqlc.GetSettingParams{
		CompanyID: in.Wa.CompanyID,
		Key:       SettingChatbotDisplay,
	})
	if err != nil {
		return DisplayText
	}
	switch setting.Value {
	case DisplayButton, DisplayList:
		return setting.Value
	}
	return DisplayText
}
