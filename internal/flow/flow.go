// Package flow drives the automated conversation with a contact while no
// agent holds the ticket: queue selection, scripted chatbot menus, rating
// replies and the out-of-hours notice.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/media"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/ticket"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

// Sender delivers outbound messages on the connection the inbound message
// arrived on. *session.Session satisfies it.
type Sender interface {
	SendText(ctx context.Context, toJID, body string) (wanet.MessageKey, error)
	Send(ctx context.Context, toJID string, msg wanet.Outbound) (wanet.MessageKey, error)
}

// Assistant is an optional AI collaborator consulted before the queue menu
// when the connection carries a prompt. Handled replies short-circuit the
// rest of the flow.
type Assistant interface {
	Reply(ctx context.Context, prompt, body string) (reply string, handled bool, err error)
}

// Input is one inbound message with everything the flow needs resolved.
// Contact is the chat peer the ticket hangs off.
type Input struct {
	Sender   Sender
	Env      *wanet.Envelope
	Body     string
	Wa       sqlc.Whatsapp
	Ticket   sqlc.Ticket
	Tracking sqlc.TicketTracking
	Contact  sqlc.Contact
	Created  bool
}

// SettingChatbotDisplay selects how menus render: text, button or list.
const SettingChatbotDisplay = "chatBotType"

// SettingBusinessHours holds the service window as "HH:MM-HH:MM".
const SettingBusinessHours = "businessHours"

type Service struct {
	queries   *sqlc.Queries
	rater     *ticket.Rater
	notifier  notify.Notifier
	media     media.Store
	assistant Assistant
	logger    *slog.Logger
}

func NewService(queries *sqlc.Queries, rater *ticket.Rater, notifier notify.Notifier, store media.Store, assistant Assistant, log *slog.Logger) *Service {
	return &Service{
		queries:   queries,
		rater:     rater,
		notifier:  notifier,
		media:     store,
		assistant: assistant,
		logger:    log.With(slog.String("component", "flow")),
	}
}

// Continue advances the automated conversation for one inbound message.
// Messages sent by the account itself and group chats never trigger
// automation.
func (s *Service) Continue(ctx context.Context, in Input) error {
	if in.Env.Key.FromMe || in.Ticket.IsGroup {
		return nil
	}

	if ticket.VerifyRating(in.Tracking) {
		return s.handleRatingReply(ctx, in)
	}

	// An assigned agent owns the conversation from here on.
	if in.Ticket.UserID.Valid {
		return nil
	}

	if s.assistant != nil && in.Wa.AssistantPrompt != "" {
		reply, handled, err := s.assistant.Reply(ctx, in.Wa.AssistantPrompt, in.Body)
		if err != nil {
			s.logger.Warn("assistant reply failed",
				slog.String("ticket_id", db.UUIDString(in.Ticket.ID)),
				slog.Any("error", err))
		} else if handled {
			return s.sendAndPersist(ctx, in, reply)
		}
	}

	if in.Created && s.outOfHours(ctx, in.Wa.CompanyID) && in.Wa.OutOfHoursMessage != "" {
		return s.sendAndPersist(ctx, in, in.Wa.OutOfHoursMessage)
	}

	if !in.Ticket.QueueID.Valid {
		return s.runQueueMenu(ctx, in)
	}
	return s.runChatbot(ctx, in)
}

func (s *Service) handleRatingReply(ctx context.Context, in Input) error {
	_, err := s.rater.HandleRating(ctx, in.Body, in.Ticket, in.Tracking)
	if err != nil {
		if !errors.Is(err, ticket.ErrInvalidRating) {
			return err
		}
		// Not a number: repeat the prompt and keep waiting.
		msg := in.Wa.RatingMessage
		if msg == "" {
			msg = "Por favor, avalie nosso atendimento de 0 a 10."
		}
		return s.sendAndPersist(ctx, in, msg)
	}
	thanks := "Obrigado pela avaliação!"
	if in.Wa.FarewellMessage != "" {
		thanks += "\n\n" + in.Wa.FarewellMessage
	}
	if err := s.sendAndPersist(ctx, in, thanks); err != nil {
		return err
	}
	s.emitTicket(in.Ticket, "closed")
	return nil
}

// finishTicket closes the ticket and its episode, optionally sending the
// connection's farewell first.
func (s *Service) finishTicket(ctx context.Context, in Input, sendFarewell bool) error {
	if sendFarewell && in.Wa.FarewellMessage != "" {
		if err := s.sendAndPersist(ctx, in, in.Wa.FarewellMessage); err != nil {
			s.logger.Warn("failed to send farewell",
				slog.String("ticket_id", db.UUIDString(in.Ticket.ID)),
				slog.Any("error", err))
		}
	}
	now := db.PgTime(time.Now())
	if err := s.queries.SetTrackingFinished(ctx, sqlc.SetTrackingFinishedParams{
		ID:         in.Tracking.ID,
		FinishedAt: now,
	}); err != nil {
		return fmt.Errorf("stamp finish: %w", err)
	}
	if err := s.queries.UpdateTicketStatus(ctx, sqlc.UpdateTicketStatusParams{
		ID:     in.Ticket.ID,
		Status: "closed",
	}); err != nil {
		return fmt.Errorf("close ticket: %w", err)
	}
	s.emitTicket(in.Ticket, "closed")
	return nil
}

// sendAndPersist sends a text to the ticket contact and records the outbound
// message row under the returned wire id.
func (s *Service) sendAndPersist(ctx context.Context, in Input, body string) error {
	key, err := in.Sender.SendText(ctx, in.Contact.Jid, body)
	if err != nil {
		return fmt.Errorf("send to %s: %w", in.Contact.Jid, err)
	}
	return s.persistOutbound(ctx, in, key, body, "", "")
}

func (s *Service) persistOutbound(ctx context.Context, in Input, key wanet.MessageKey, body, mediaType, mediaURL string) error {
	msg, err := s.queries.CreateMessage(ctx, sqlc.CreateMessageParams{
		Wid:       key.ID,
		TicketID:  in.Ticket.ID,
		ContactID: in.Contact.ID,
		CompanyID: in.Wa.CompanyID,
		Body:      body,
		FromMe:    true,
		Ack:       1,
		Read:      true,
		MediaType: mediaType,
		MediaUrl:  mediaURL,
	})
	if err != nil {
		return fmt.Errorf("persist outbound message: %w", err)
	}
	s.notifier.Emit(db.UUIDString(in.Wa.CompanyID), "appMessage", map[string]any{
		"action":    "create",
		"messageId": db.UUIDString(msg.ID),
		"ticketId":  db.UUIDString(in.Ticket.ID),
	})
	return nil
}

// sendStoredFile loads a file from the media store and sends it as a
// document.
func (s *Service) sendStoredFile(ctx context.Context, in Input, fileName, filePath string) error {
	data, mimetype, err := s.media.Load(ctx, filePath)
	if err != nil {
		return fmt.Errorf("load file %s: %w", filePath, err)
	}
	key, err := in.Sender.Send(ctx, in.Contact.Jid, wanet.Outbound{
		Document: &wanet.OutboundDocument{
			FileName: fileName,
			Mimetype: mimetype,
			Data:     data,
		},
	})
	if err != nil {
		return fmt.Errorf("send file %s: %w", fileName, err)
	}
	return s.persistOutbound(ctx, in, key, fileName, "document", filePath)
}

// outOfHours reports whether the current time falls outside the company's
// configured service window. No configured window means always in hours.
func (s *Service) outOfHours(ctx context.Context, companyID pgtype.UUID) bool {
	setting, err := s.queries.GetSetting(ctx, sqlc.GetSettingParams{
		CompanyID: companyID,
		Key:       SettingBusinessHours,
	})
	if err != nil {
		return false
	}
	start, end, ok := parseWindow(setting.Value)
	if !ok {
		return false
	}
	now := time.Now()
	minute := now.Hour()*60 + now.Minute()
	if start <= end {
		return minute < start || minute >= end
	}
	// Window crosses midnight.
	return minute < start && minute >= end
}

// parseWindow parses "HH:MM-HH:MM" into minutes since midnight.
func parseWindow(v string) (start, end int, ok bool) {
	var sh, sm, eh, em int
	if _, err := fmt.Sscanf(v, "%d:%d-%d:%d", &sh, &sm, &eh, &em); err != nil {
		return 0, 0, false
	}
	if sh < 0 || sh > 23 || eh < 0 || eh > 23 || sm < 0 || sm > 59 || em < 0 || em > 59 {
		return 0, 0, false
	}
	return sh*60 + sm, eh*60 + em, true
}

func (s *Service) emitTicket(t sqlc.Ticket, action string) {
	s.notifier.Emit(db.UUIDString(t.CompanyID), "ticket", map[string]any{
		"action":   action,
		"ticketId": db.UUIDString(t.ID),
	})
}
