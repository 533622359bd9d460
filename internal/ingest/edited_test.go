package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

// scriptedDB is a DBTX whose single-row queries are keyed by the sqlc query
// name and whose exec statements are recorded for assertions.
type scriptedDB struct {
	rows  map[string]func(dest ...any) error
	execs []execCall
}

type execCall struct {
	name string
	args []any
}

func queryName(sql string) string {
	line, _, _ := strings.Cut(sql, "\n")
	f := strings.Fields(line)
	if len(f) >= 3 {
		return f[2]
	}
	return line
}

func (d *scriptedDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, execCall{name: queryName(sql), args: args})
	return pgconn.CommandTag{}, nil
}

func (d *scriptedDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected query %s", queryName(sql))
}

func (d *scriptedDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	scan, ok := d.rows[queryName(sql)]
	if !ok {
		return errRow{err: fmt.Errorf("unexpected row query %s", queryName(sql))}
	}
	return scanRow(scan)
}

type scanRow func(dest ...any) error

func (f scanRow) Scan(dest ...any) error { return f(dest...) }

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

type recordedEvent struct {
	company string
	event   string
	payload any
}

type recordingNotifier struct {
	events []recordedEvent
}

func (n *recordingNotifier) Emit(companyID, event string, payload any) {
	n.events = append(n.events, recordedEvent{company: companyID, event: event, payload: payload})
}

func editEnvelope(targetWid, body string) *wanet.Envelope {
	return &wanet.Envelope{
		Key: wanet.MessageKey{RemoteJID: "x@s.whatsapp.net", ID: "EDIT1"},
		Content: &wanet.MessageContent{
			Protocol: &wanet.ProtocolContent{
				Type:          wanet.ProtocolEdit,
				Key:           wanet.MessageKey{RemoteJID: "x@s.whatsapp.net", ID: targetWid},
				EditedMessage: &wanet.MessageContent{Conversation: strPtr(body)},
			},
		},
	}
}

func TestEditedMessageRefreshesTicketSnapshot(t *testing.T) {
	t.Parallel()

	msgID := pgtype.UUID{Bytes: [16]byte{1}, Valid: true}
	ticketID := pgtype.UUID{Bytes: [16]byte{2}, Valid: true}
	companyID := pgtype.UUID{Bytes: [16]byte{3}, Valid: true}

	dbx := &scriptedDB{rows: map[string]func(dest ...any) error{
		"GetMessageByWid": func(dest ...any) error {
			*(dest[0].(*pgtype.UUID)) = msgID
			*(dest[1].(*string)) = "WID1"
			*(dest[2].(*pgtype.UUID)) = ticketID
			*(dest[4].(*pgtype.UUID)) = companyID
			*(dest[5].(*string)) = "before"
			return nil
		},
		"GetTicket": func(dest ...any) error {
			*(dest[0].(*pgtype.UUID)) = ticketID
			*(dest[1].(*pgtype.UUID)) = companyID
			*(dest[4].(*string)) = "open"
			*(dest[8].(*int32)) = 2
			return nil
		},
	}}
	notifier := &recordingNotifier{}
	h := NewEditedHandler(sqlc.New(dbx), notifier, discardLogger())

	env := editEnvelope("WID1", "after")
	in := &HandlerInput{
		Msg: ClassifiedMessage{Type: TypeEditedMessage, Body: "after", Env: env},
		Wa:  sqlc.Whatsapp{CompanyID: companyID},
	}
	require.NoError(t, h.Handle(context.Background(), in))

	require.Len(t, dbx.execs, 2)
	assert.Equal(t, "UpdateMessageBodyEdited", dbx.execs[0].name)
	assert.Equal(t, "after", dbx.execs[0].args[1])
	assert.Equal(t, "UpdateTicketSnapshot", dbx.execs[1].name)
	assert.Equal(t, ticketID, dbx.execs[1].args[0])
	assert.Equal(t, "after", dbx.execs[1].args[1])
	assert.Equal(t, int32(2), dbx.execs[1].args[2], "unread count must be preserved")

	require.Len(t, notifier.events, 2)
	assert.Equal(t, "appMessage", notifier.events[0].event)
	assert.Equal(t, "ticket", notifier.events[1].event)
}

func TestEditedMessageUnknownTargetSkipped(t *testing.T) {
	t.Parallel()

	dbx := &scriptedDB{rows: map[string]func(dest ...any) error{
		"GetMessageByWid": func(dest ...any) error { return pgx.ErrNoRows },
	}}
	notifier := &recordingNotifier{}
	h := NewEditedHandler(sqlc.New(dbx), notifier, discardLogger())

	in := &HandlerInput{
		Msg: ClassifiedMessage{Type: TypeEditedMessage, Body: "after", Env: editEnvelope("GONE", "after")},
		Wa:  sqlc.Whatsapp{CompanyID: pgtype.UUID{Bytes: [16]byte{3}, Valid: true}},
	}
	require.NoError(t, h.Handle(context.Background(), in))

	assert.Empty(t, dbx.execs)
	assert.Empty(t, notifier.events)
}

func TestEditedMessageFromHistoryStaysSilent(t *testing.T) {
	t.Parallel()

	msgID := pgtype.UUID{Bytes: [16]byte{1}, Valid: true}
	ticketID := pgtype.UUID{Bytes: [16]byte{2}, Valid: true}

	dbx := &scriptedDB{rows: map[string]func(dest ...any) error{
		"GetMessageByWid": func(dest ...any) error {
			*(dest[0].(*pgtype.UUID)) = msgID
			*(dest[2].(*pgtype.UUID)) = ticketID
			return nil
		},
		"GetTicket": func(dest ...any) error {
			*(dest[0].(*pgtype.UUID)) = ticketID
			return nil
		},
	}}
	notifier := &recordingNotifier{}
	h := NewEditedHandler(sqlc.New(dbx), notifier, discardLogger())

	in := &HandlerInput{
		Msg:         ClassifiedMessage{Type: TypeEditedMessage, Body: "after", Env: editEnvelope("WID1", "after")},
		Wa:          sqlc.Whatsapp{CompanyID: pgtype.UUID{Bytes: [16]byte{3}, Valid: true}},
		FromHistory: true,
	}
	require.NoError(t, h.Handle(context.Background(), in))

	require.Len(t, dbx.execs, 2, "storage still updated for history edits")
	assert.Empty(t, notifier.events, "no realtime events for history edits")
}
