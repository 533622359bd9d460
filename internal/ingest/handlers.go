package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"

	"github.com/jackc/pgx/v5"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/media"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

const audioRejectionNotice = "Desculpe, não aceitamos mensagens de áudio neste canal. Por favor, envie sua mensagem em texto."

// persistInbound records one message row and emits the realtime notification.
// History-sync messages are stored silently.
func persistInbound(ctx context.Context, queries *sqlc.Queries, notifier notify.Notifier, in *HandlerInput, body, mediaType, mediaURL string) error {
	env := in.Msg.Env
	msg, err := queries.CreateMessage(ctx, sqlc.CreateMessageParams{
		Wid:       env.Key.ID,
		TicketID:  in.Res.Ticket.ID,
		ContactID: in.Res.Contact.ID,
		CompanyID: in.Wa.CompanyID,
		Body:      body,
		FromMe:    env.Key.FromMe,
		Ack:       ackFor(env),
		Read:      env.Key.FromMe,
		MediaType: mediaType,
		MediaUrl:  mediaURL,
	})
	if err != nil {
		return fmt.Errorf("persist message %s: %w", env.Key.ID, err)
	}
	if !in.FromHistory {
		notifier.Emit(db.UUIDString(in.Wa.CompanyID), "appMessage", map[string]any{
			"action":    "create",
			"messageId": db.UUIDString(msg.ID),
			"ticketId":  db.UUIDString(in.Res.Ticket.ID),
		})
	}
	return nil
}

func ackFor(env *wanet.Envelope) int32 {
	if env.Key.FromMe {
		return 1
	}
	return 0
}

// TextHandler persists plain textual messages.
type TextHandler struct {
	queries  *sqlc.Queries
	notifier notify.Notifier
}

func NewTextHandler(queries *sqlc.Queries, notifier notify.Notifier) *TextHandler {
	return &TextHandler{queries: queries, notifier: notifier}
}

func (h *TextHandler) Handle(ctx context.Context, in *HandlerInput) error {
	return persistInbound(ctx, h.queries, h.notifier, in, in.Msg.Body, "", "")
}

// VCardHandler persists shared contact cards, already flattened to
// "name: number" lines by the classifier.
type VCardHandler struct {
	queries  *sqlc.Queries
	notifier notify.Notifier
}

func NewVCardHandler(queries *sqlc.Queries, notifier notify.Notifier) *VCardHandler {
	return &VCardHandler{queries: queries, notifier: notifier}
}

func (h *VCardHandler) Handle(ctx context.Context, in *HandlerInput) error {
	return persistInbound(ctx, h.queries, h.notifier, in, in.Msg.Body, "vcard", "")
}

// MediaHandler downloads media payloads into the store and persists the
// message with its media reference. Download failures degrade to a text-only
// row instead of dropping the message.
type MediaHandler struct {
	queries  *sqlc.Queries
	notifier notify.Notifier
	store    media.Store
	logger   *slog.Logger
}

func NewMediaHandler(queries *sqlc.Queries, notifier notify.Notifier, store media.Store, log *slog.Logger) *MediaHandler {
	return &MediaHandler{
		queries:  queries,
		notifier: notifier,
		store:    store,
		logger:   log.With(slog.String("component", "media_handler")),
	}
}

func (h *MediaHandler) Handle(ctx context.Context, in *HandlerInput) error {
	env := in.Msg.Env

	if h.rejectVoiceNote(in) {
		if err := persistInbound(ctx, h.queries, h.notifier, in, "(áudio recusado)", "", ""); err != nil {
			return err
		}
		if _, err := in.Sess.SendText(ctx, in.Res.Contact.Jid, audioRejectionNotice); err != nil {
			h.logger.Warn("failed to send audio rejection notice",
				slog.String("jid", in.Res.Contact.Jid),
				slog.Any("error", err))
		}
		return nil
	}

	// History batches are stored without fetching payloads.
	if in.FromHistory {
		return persistInbound(ctx, h.queries, h.notifier, in, in.Msg.Body, mediaTypeOf(in.Msg), "")
	}

	data, mimetype, err := in.Sess.Download(ctx, env)
	if err != nil {
		h.logger.Warn("media download failed",
			slog.String("wid", env.Key.ID),
			slog.Any("error", err))
		body := in.Msg.Body
		if body == "" {
			body = "(mídia indisponível)"
		}
		return persistInbound(ctx, h.queries, h.notifier, in, body, mediaTypeOf(in.Msg), "")
	}

	relPath := fmt.Sprintf("%s/%s%s", db.UUIDString(in.Wa.CompanyID), env.Key.ID, extFor(mimetype))
	stored, err := h.store.Save(ctx, relPath, data)
	if err != nil {
		return fmt.Errorf("store media %s: %w", env.Key.ID, err)
	}
	return persistInbound(ctx, h.queries, h.notifier, in, in.Msg.Body, mediaTypeOf(in.Msg), stored)
}

// rejectVoiceNote applies the voice-note policy: push-to-talk audio from a
// contact is refused unless the connection or the contact accepts audio.
func (h *MediaHandler) rejectVoiceNote(in *HandlerInput) bool {
	env := in.Msg.Env
	if in.Msg.Type != TypeAudio || env.Content == nil || env.Content.Audio == nil {
		return false
	}
	if !env.Content.Audio.PTT || env.Key.FromMe || in.FromHistory {
		return false
	}
	return !in.Wa.AcceptAudio && !in.Res.Contact.AcceptAudio
}

func mediaTypeOf(msg ClassifiedMessage) string {
	switch msg.Type {
	case TypeImage:
		return "image"
	case TypeVideo:
		return "video"
	case TypeAudio:
		return "audio"
	case TypeDocument, TypeDocumentWithCaption:
		return "document"
	case TypeSticker:
		return "sticker"
	case TypeViewOnce:
		c := msg.Env.Content
		if c != nil && c.ViewOnce != nil && c.ViewOnce.Message != nil && c.ViewOnce.Message.Video != nil {
			return "video"
		}
		return "image"
	}
	return ""
}

func extFor(mimetype string) string {
	exts, err := mime.ExtensionsByType(mimetype)
	if err != nil || len(exts) == 0 {
		return ".bin"
	}
	return exts[0]
}

// EditedHandler applies edits and revokes to already stored messages. A
// target that was never stored is skipped quietly.
type EditedHandler struct {
	queries  *sqlc.Queries
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewEditedHandler(queries *sqlc.Queries, notifier notify.Notifier, log *slog.Logger) *EditedHandler {
	return &EditedHandler{
		queries:  queries,
		notifier: notifier,
		logger:   log.With(slog.String("component", "edited_handler")),
	}
}

func (h *EditedHandler) Handle(ctx context.Context, in *HandlerInput) error {
	env := in.Msg.Env
	if env.Content == nil || env.Content.Protocol == nil {
		return nil
	}
	proto := env.Content.Protocol

	switch in.Msg.Type {
	case TypeEditedMessage:
		target, err := h.queries.GetMessageByWid(ctx, sqlc.GetMessageByWidParams{
			CompanyID: in.Wa.CompanyID,
			Wid:       proto.Key.ID,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			h.logger.Debug("edit for unknown message", slog.String("wid", proto.Key.ID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("load edited message %s: %w", proto.Key.ID, err)
		}
		if err := h.queries.UpdateMessageBodyEdited(ctx, sqlc.UpdateMessageBodyEditedParams{
			ID:   target.ID,
			Body: in.Msg.Body,
		}); err != nil {
			return fmt.Errorf("apply edit %s: %w", proto.Key.ID, err)
		}
		t, err := h.queries.GetTicket(ctx, target.TicketID)
		if err != nil {
			return fmt.Errorf("load ticket for edit %s: %w", proto.Key.ID, err)
		}
		if err := h.queries.UpdateTicketSnapshot(ctx, sqlc.UpdateTicketSnapshotParams{
			ID:             t.ID,
			LastMessage:    in.Msg.Body,
			UnreadMessages: t.UnreadMessages,
		}); err != nil {
			return fmt.Errorf("refresh ticket snapshot %s: %w", proto.Key.ID, err)
		}
		h.emit(in, target, "update")
		h.emitTicket(in, t)

	case TypeProtocolMessage:
		if proto.Type != wanet.ProtocolRevoke {
			return nil
		}
		if err := h.queries.MarkMessageDeleted(ctx, sqlc.MarkMessageDeletedParams{
			CompanyID: in.Wa.CompanyID,
			Wid:       proto.Key.ID,
		}); err != nil {
			return fmt.Errorf("apply revoke %s: %w", proto.Key.ID, err)
		}
	}
	return nil
}

func (h *EditedHandler) emit(in *HandlerInput, target sqlc.Message, action string) {
	if in.FromHistory {
		return
	}
	h.notifier.Emit(db.UUIDString(in.Wa.CompanyID), "appMessage", map[string]any{
		"action":    action,
		"messageId": db.UUIDString(target.ID),
		"ticketId":  db.UUIDString(target.TicketID),
	})
}

func (h *EditedHandler) emitTicket(in *HandlerInput, t sqlc.Ticket) {
	if in.FromHistory {
		return
	}
	h.notifier.Emit(db.UUIDString(in.Wa.CompanyID), "ticket", map[string]any{
		"action":   "update",
		"ticketId": db.UUIDString(t.ID),
		"status":   t.Status,
	})
}
