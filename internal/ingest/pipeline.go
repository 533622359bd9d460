// Package ingest turns raw protocol events into stored messages, resolved
// tickets and automated-flow continuations. One pipeline instance serves all
// connections; ordering per connection is guaranteed by the session event
// loop that calls it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/errtrack"
	"github.com/zapdesk/zapdesk/internal/flow"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/session"
	"github.com/zapdesk/zapdesk/internal/ticket"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

// Pipeline implements session.MessageSink. A failure while processing one
// message is reported and contained; the rest of the batch proceeds.
type Pipeline struct {
	queries  *sqlc.Queries
	resolver *ticket.Resolver
	router   *Router
	flow     *flow.Service
	metrics  *metrics.Metrics
	reporter errtrack.Reporter
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewPipeline(
	queries *sqlc.Queries,
	resolver *ticket.Resolver,
	router *Router,
	flowSvc *flow.Service,
	m *metrics.Metrics,
	reporter errtrack.Reporter,
	notifier notify.Notifier,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		queries:  queries,
		resolver: resolver,
		router:   router,
		flow:     flowSvc,
		metrics:  m,
		reporter: reporter,
		notifier: notifier,
		logger:   log.With(slog.String("component", "ingest")),
	}
}

func (p *Pipeline) HandleMessages(ctx context.Context, sess *session.Session, msgs []*wanet.Envelope, fromHistory bool) {
	wa, err := p.loadWhatsapp(ctx, sess.ID)
	if err != nil {
		p.report(ctx, err, map[string]any{"whatsapp_id": sess.ID})
		return
	}
	for _, env := range msgs {
		if err := p.handleOne(ctx, sess, wa, env, fromHistory); err != nil {
			p.report(ctx, err, map[string]any{
				"whatsapp_id": sess.ID,
				"wid":         env.Key.ID,
			})
		}
	}
}

func (p *Pipeline) handleOne(ctx context.Context, sess *session.Session, wa sqlc.Whatsapp, env *wanet.Envelope, fromHistory bool) error {
	ok, reason := Validate(env)
	if !ok {
		p.metrics.MessagesDropped.WithLabelValues(reason).Inc()
		return nil
	}

	msg := Classify(env)
	in := &HandlerInput{
		Sess:        sess,
		Msg:         msg,
		Wa:          wa,
		FromHistory: fromHistory,
	}

	// Edits and revokes target rows that already exist; they never open
	// tickets.
	if msg.Type == TypeEditedMessage || msg.Type == TypeProtocolMessage {
		if err := p.router.Dispatch(ctx, in); err != nil {
			return err
		}
		p.metrics.MessagesAccepted.Inc()
		return nil
	}

	res, err := p.resolver.Resolve(ctx, env, msg.Body, wa)
	if errors.Is(err, ticket.ErrGroupsDisallowed) {
		p.metrics.MessagesDropped.WithLabelValues(DropReasonGroupDenied).Inc()
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve ticket: %w", err)
	}
	in.Res = res

	if err := p.router.Dispatch(ctx, in); err != nil {
		if errors.Is(err, ErrNoHandler) {
			p.metrics.MessagesDropped.WithLabelValues(DropReasonNoHandler).Inc()
			return nil
		}
		return err
	}
	p.metrics.MessagesAccepted.Inc()
	p.markRead(ctx, sess, env, res.Ticket, fromHistory)

	if fromHistory || p.flow == nil {
		return nil
	}
	contact := res.Contact
	if res.GroupContact != nil {
		contact = *res.GroupContact
	}
	if err := p.flow.Continue(ctx, flow.Input{
		Sender:   sess,
		Env:      env,
		Body:     msg.Body,
		Wa:       wa,
		Ticket:   res.Ticket,
		Tracking: res.Tracking,
		Contact:  contact,
		Created:  res.Created,
	}); err != nil {
		return fmt.Errorf("continue flow: %w", err)
	}
	return nil
}

// markRead sends the read receipt for an accepted inbound message. History
// replays, own messages and closed tickets keep their unread state.
func (p *Pipeline) markRead(ctx context.Context, sess *session.Session, env *wanet.Envelope, t sqlc.Ticket, fromHistory bool) {
	if fromHistory || env.Key.FromMe || t.Status == "closed" {
		return
	}
	if err := sess.MarkRead(ctx, []wanet.MessageKey{env.Key}); err != nil {
		p.logger.Warn("failed to send read receipt",
			slog.String("wid", env.Key.ID),
			slog.Any("error", err))
	}
}

func (p *Pipeline) HandleUpdate(ctx context.Context, sess *session.Session, upd wanet.UpdateEvent) {
	wa, err := p.loadWhatsapp(ctx, sess.ID)
	if err != nil {
		p.report(ctx, err, map[string]any{"whatsapp_id": sess.ID})
		return
	}
	if upd.Deleted {
		if err := p.queries.MarkMessageDeleted(ctx, sqlc.MarkMessageDeletedParams{
			CompanyID: wa.CompanyID,
			Wid:       upd.Key.ID,
		}); err != nil {
			p.report(ctx, fmt.Errorf("mark deleted %s: %w", upd.Key.ID, err), nil)
		}
		return
	}
	// Acks only move forward; the query ignores regressions.
	if err := p.queries.UpdateMessageAck(ctx, sqlc.UpdateMessageAckParams{
		CompanyID: wa.CompanyID,
		Wid:       upd.Key.ID,
		Ack:       int32(upd.Ack),
	}); err != nil {
		p.report(ctx, fmt.Errorf("update ack %s: %w", upd.Key.ID, err), nil)
		return
	}
	p.notifier.Emit(db.UUIDString(wa.CompanyID), "appMessage", map[string]any{
		"action": "ack",
		"wid":    upd.Key.ID,
		"ack":    upd.Ack,
	})
}

func (p *Pipeline) HandleContacts(ctx context.Context, sess *session.Session, ev wanet.ContactsEvent) {
	wa, err := p.loadWhatsapp(ctx, sess.ID)
	if err != nil {
		p.report(ctx, err, map[string]any{"whatsapp_id": sess.ID})
		return
	}
	for _, c := range ev.Contacts {
		if c.Name == "" {
			continue
		}
		if err := p.queries.UpdateContactName(ctx, sqlc.UpdateContactNameParams{
			CompanyID: wa.CompanyID,
			Jid:       wanet.NormalizeJID(c.JID),
			Name:      c.Name,
		}); err != nil {
			p.report(ctx, fmt.Errorf("update contact %s: %w", c.JID, err), nil)
		}
	}
}

func (p *Pipeline) HandleGroups(ctx context.Context, sess *session.Session, ev wanet.GroupsEvent) {
	wa, err := p.loadWhatsapp(ctx, sess.ID)
	if err != nil {
		p.report(ctx, err, map[string]any{"whatsapp_id": sess.ID})
		return
	}
	for _, g := range ev.Groups {
		if g.Subject == "" {
			continue
		}
		if err := p.queries.UpdateContactName(ctx, sqlc.UpdateContactNameParams{
			CompanyID: wa.CompanyID,
			Jid:       wanet.NormalizeJID(g.JID),
			Name:      g.Subject,
		}); err != nil {
			p.report(ctx, fmt.Errorf("update group %s: %w", g.JID, err), nil)
		}
	}
}

func (p *Pipeline) loadWhatsapp(ctx context.Context, id string) (sqlc.Whatsapp, error) {
	waID, err := db.ParseUUID(id)
	if err != nil {
		return sqlc.Whatsapp{}, err
	}
	wa, err := p.queries.GetWhatsapp(ctx, waID)
	if err != nil {
		return sqlc.Whatsapp{}, fmt.Errorf("load connection %s: %w", id, err)
	}
	return wa, nil
}

func (p *Pipeline) report(ctx context.Context, err error, fields map[string]any) {
	p.reporter.Report(ctx, err, fields)
}
