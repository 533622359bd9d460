package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

// ErrGroupsDisallowed marks a group message on a connection that does not
// admit groups; the pipeline drops it here.
var ErrGroupsDisallowed = errors.New("ERR_GROUPS_DISALLOWED")

// Resolution is the product of resolving one inbound message: the active
// ticket, its open tracking episode, and the contact rows involved.
type Resolution struct {
	Ticket       sqlc.Ticket
	Tracking     sqlc.TicketTracking
	Contact      sqlc.Contact
	GroupContact *sqlc.Contact
	Created      bool
}

// Resolver finds or atomically creates the Ticket/Contact pair for a
// classified message. Creation is serialized per
// (contact, connection, company) key through a striped lock; the partial
// unique index on active tickets backs the lock as a second line of defense.
type Resolver struct {
	queries *sqlc.Queries
	locks   *KeyedMutex
	unreads Counters
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewResolver(queries *sqlc.Queries, locks *KeyedMutex, unreads Counters, m *metrics.Metrics, log *slog.Logger) *Resolver {
	if locks == nil {
		locks = NewKeyedMutex(defaultStripes)
	}
	return &Resolver{
		queries: queries,
		locks:   locks,
		unreads: unreads,
		metrics: m,
		logger:  log.With(slog.String("component", "ticket_resolver")),
	}
}

// Resolve derives the sender, upserts contacts, and find-or-creates the
// active ticket plus its tracking record.
func (r *Resolver) Resolve(ctx context.Context, env *wanet.Envelope, body string, wa sqlc.Whatsapp) (Resolution, error) {
	remoteJID := wanet.NormalizeJID(env.Key.RemoteJID)
	isGroup := wanet.IsGroupJID(remoteJID)
	if isGroup && !wa.AllowGroups {
		return Resolution{}, ErrGroupsDisallowed
	}

	senderJID := remoteJID
	if isGroup {
		participant := env.Key.Participant
		if participant == "" {
			participant = env.Participant
		}
		senderJID = wanet.NormalizeJID(participant)
	}

	name := env.PushName
	if env.Key.FromMe || name == "" {
		name = wanet.Digits(senderJID)
	}

	contact, err := r.queries.UpsertContact(ctx, sqlc.UpsertContactParams{
		CompanyID: wa.CompanyID,
		Name:      name,
		Number:    wanet.Digits(senderJID),
		Jid:       senderJID,
		IsGroup:   false,
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("upsert contact %s: %w", senderJID, err)
	}

	// The ticket hangs off the chat peer: the group itself for group
	// messages, the contact otherwise.
	ticketContact := contact
	var groupContact *sqlc.Contact
	if isGroup {
		gc, err := r.queries.UpsertContact(ctx, sqlc.UpsertContactParams{
			CompanyID: wa.CompanyID,
			Name:      env.PushName,
			Number:    wanet.Digits(remoteJID),
			Jid:       remoteJID,
			IsGroup:   true,
		})
		if err != nil {
			return Resolution{}, fmt.Errorf("upsert group contact %s: %w", remoteJID, err)
		}
		groupContact = &gc
		ticketContact = gc
	}

	unread := 0
	if env.Key.FromMe {
		if err := r.unreads.Reset(ctx, db.UUIDString(ticketContact.ID)); err != nil {
			r.logger.Warn("failed to reset unread counter",
				slog.String("contact_id", db.UUIDString(ticketContact.ID)),
				slog.Any("error", err))
		}
	} else {
		n, err := r.unreads.Increment(ctx, db.UUIDString(ticketContact.ID))
		if err != nil {
			r.logger.Warn("failed to increment unread counter",
				slog.String("contact_id", db.UUIDString(ticketContact.ID)),
				slog.Any("error", err))
		} else {
			unread = n
		}
	}

	key := db.UUIDString(ticketContact.ID) + "|" + db.UUIDString(wa.ID) + "|" + db.UUIDString(wa.CompanyID)
	unlock := r.locks.Lock(key)
	defer unlock()

	t, created, err := r.findOrCreate(ctx, ticketContact, wa, body, unread, isGroup)
	if err != nil {
		return Resolution{}, err
	}
	if created {
		r.metrics.TicketsCreated.Inc()
	} else {
		if err := r.queries.UpdateTicketSnapshot(ctx, sqlc.UpdateTicketSnapshotParams{
			ID:             t.ID,
			LastMessage:    body,
			UnreadMessages: int32(unread),
		}); err != nil {
			r.logger.Warn("failed to update ticket snapshot",
				slog.String("ticket_id", db.UUIDString(t.ID)),
				slog.Any("error", err))
		}
	}

	tracking, err := r.queries.GetOpenTracking(ctx, t.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		tracking, err = r.queries.CreateTracking(ctx, sqlc.CreateTrackingParams{
			TicketID:   t.ID,
			CompanyID:  wa.CompanyID,
			WhatsappID: wa.ID,
		})
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve tracking for ticket %s: %w", db.UUIDString(t.ID), err)
	}

	return Resolution{
		Ticket:       t,
		Tracking:     tracking,
		Contact:      contact,
		GroupContact: groupContact,
		Created:      created,
	}, nil
}

func (r *Resolver) findOrCreate(ctx context.Context, contact sqlc.Contact, wa sqlc.Whatsapp, body string, unread int, isGroup bool) (sqlc.Ticket, bool, error) {
	params := sqlc.GetActiveTicketParams{
		ContactID:  contact.ID,
		WhatsappID: wa.ID,
		CompanyID:  wa.CompanyID,
	}
	t, err := r.queries.GetActiveTicket(ctx, params)
	if err == nil {
		return t, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return sqlc.Ticket{}, false, fmt.Errorf("find active ticket: %w", err)
	}

	t, err = r.queries.CreateTicket(ctx, sqlc.CreateTicketParams{
		CompanyID:      wa.CompanyID,
		WhatsappID:     wa.ID,
		ContactID:      contact.ID,
		Status:         "pending",
		LastMessage:    body,
		UnreadMessages: int32(unread),
		IsGroup:        isGroup,
	})
	if err == nil {
		return t, true, nil
	}
	// Lost a race across instances: the unique index fired, so the winner's
	// row is there to read.
	if db.IsUniqueViolation(err) {
		t, rerr := r.queries.GetActiveTicket(ctx, params)
		if rerr != nil {
			return sqlc.Ticket{}, false, fmt.Errorf("reread ticket after conflict: %w", rerr)
		}
		return t, false, nil
	}
	return sqlc.Ticket{}, false, fmt.Errorf("create ticket: %w", err)
}
