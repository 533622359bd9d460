package ticket

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
)

func TestVerifyRating(t *testing.T) {
	t.Parallel()

	now := db.PgTime(time.Now())
	user := pgtype.UUID{Bytes: [16]byte{1}, Valid: true}

	tests := []struct {
		name     string
		tracking sqlc.TicketTracking
		want     bool
	}{
		{
			name: "awaiting rating",
			tracking: sqlc.TicketTracking{
				ClosedAt: now,
				UserID:   user,
			},
			want: true,
		},
		{
			name:     "never closed",
			tracking: sqlc.TicketTracking{UserID: user},
		},
		{
			name: "no agent ever assigned",
			tracking: sqlc.TicketTracking{
				ClosedAt: now,
			},
		},
		{
			name: "already rated",
			tracking: sqlc.TicketTracking{
				ClosedAt: now,
				UserID:   user,
				RatedAt:  now,
			},
		},
		{
			name: "episode finished without rating",
			tracking: sqlc.TicketTracking{
				ClosedAt:   now,
				UserID:     user,
				FinishedAt: now,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := VerifyRating(tt.tracking); got != tt.want {
				t.Fatalf("VerifyRating() = %v, want %v", got, tt.want)
			}
		})
	}
}
