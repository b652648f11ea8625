package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

const eventColumns = `kind TEXT NOT NULL,
	subject_id TEXT NOT NULL DEFAULT '',
	page_offset INTEGER NOT NULL,
	total INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL`

// Migrate creates the event journal table.
func (r *Repos) Migrate(ctx context.Context) error {
	id := "id BIGSERIAL PRIMARY KEY"
	if r.db.DriverName() == "sqlite" {
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meter_events (`+id+`,
	`+eventColumns+`)`)
	if err != nil {
		return fmt.Errorf("migrate meter_events: %w", err)
	}
	return nil
}

func (r *Repos) InsertEvent(ctx context.Context, ev *domain.Event) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO meter_events(kind, subject_id, page_offset, total, created_at) VALUES (?,?,?,?,?)`),
		ev.Kind, ev.SubjectID, ev.Offset, ev.Total, ev.Timestamp.UTC())
	return err
}

// ListEvents returns the newest events first, optionally filtered by kind.
func (r *Repos) ListEvents(ctx context.Context, kind domain.EventKind, limit int) ([]domain.Event, error) {
	out := []domain.Event{}
	q := `SELECT id, kind, subject_id, page_offset, total, created_at FROM meter_events`
	args := []any{}
	if kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, kind)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}
