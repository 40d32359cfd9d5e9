package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kattacharan/Task-Automation-Bot/internal/model"
)

// PostgresStore backs shared deployments where the assistant runs next
// to other services. Same schema shape as the SQLite store, with
// timestamps as unix milliseconds.
type PostgresStore struct {
	db *sql.DB
}

var _ ReminderStore = (*PostgresStore)(nil)

func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
		CREATE TABLE IF NOT EXISTS reminders (
			id TEXT NOT NULL PRIMARY KEY,
			message TEXT NOT NULL,
			fire_at BIGINT NOT NULL,
			recurrence TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			last_fired_at BIGINT
		);

		CREATE INDEX IF NOT EXISTS reminders_fire_at_idx ON reminders (fire_at ASC);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure reminders table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Create(ctx context.Context, message string, fireAt time.Time, rec model.Recurrence) (model.Reminder, error) {
	r := model.Reminder{
		ID:         uuid.NewString(),
		Message:    message,
		FireAt:     fireAt.UTC(),
		Recurrence: rec,
		Status:     model.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, message, fire_at, recurrence, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.ID, r.Message, r.FireAt.UnixMilli(), r.Recurrence.String(), string(r.Status), r.CreatedAt.UnixMilli())
	if err != nil {
		return model.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	return r, nil
}

const pgSelect = `
	SELECT id, message, fire_at, recurrence, status, created_at, last_fired_at
	FROM reminders
`

func (s *PostgresStore) Get(ctx context.Context, id string) (model.Reminder, error) {
	row := s.db.QueryRowContext(ctx, pgSelect+`WHERE id = $1`, id)
	r, err := scanReminderRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reminder{}, ErrNotFound
	}
	return r, err
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]model.Reminder, error) {
	q := pgSelect
	var args []any
	if f.Status != "" {
		q += `WHERE status = $1 `
		args = append(args, string(f.Status))
	}
	q += `ORDER BY fire_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

func (s *PostgresStore) Due(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, pgSelect+`
		WHERE status = $1 AND fire_at <= $2
		ORDER BY fire_at ASC, id ASC
	`, string(model.StatusPending), now.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

func (s *PostgresStore) MarkFired(ctx context.Context, id string, firedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET status = $1, last_fired_at = $2
		WHERE id = $3 AND status = $4
	`, string(model.StatusFired), firedAt.UTC().UnixMilli(), id, string(model.StatusPending))
	return s.afterConditional(ctx, res, err, id, model.StatusFired)
}

func (s *PostgresStore) Rearm(ctx context.Context, id string, nextFireAt, firedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET fire_at = $1, last_fired_at = $2
		WHERE id = $3 AND status = $4
	`, nextFireAt.UTC().UnixMilli(), firedAt.UTC().UnixMilli(), id, string(model.StatusPending))
	return s.afterConditional(ctx, res, err, id, model.StatusPending)
}

func (s *PostgresStore) Cancel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET status = $1
		WHERE id = $2 AND status = $3
	`, string(model.StatusCancelled), id, string(model.StatusPending))
	return s.afterConditional(ctx, res, err, id, model.StatusCancelled)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) afterConditional(ctx context.Context, res sql.Result, err error, id string, to model.Status) error {
	if err != nil {
		return fmt.Errorf("update reminder %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return explain(ctx, s, id, to)
	}
	return nil
}
