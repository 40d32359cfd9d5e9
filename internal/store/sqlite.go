package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kattacharan/Task-Automation-Bot/internal/model"
)

// SQLiteStore is the default embedded store. WAL journaling plus a busy
// timeout lets the scheduler and the HTTP handlers write concurrently;
// SQLite serializes the writes itself.
type SQLiteStore struct {
	db *sql.DB
}

var _ ReminderStore = (*SQLiteStore)(nil)

func OpenSQLite(path string) (*SQLiteStore, error) {
	qs := url.Values{
		"_txlock": []string{"immediate"},
		"_pragma": []string{
			"journal_mode(WAL)",
			"busy_timeout(2000)",
		},
	}
	db, err := sql.Open("sqlite", "file:"+path+"?"+qs.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	_, err = db.ExecContext(context.Background(),
		`CREATE TABLE IF NOT EXISTS reminders (
			id TEXT NOT NULL PRIMARY KEY,
			message TEXT NOT NULL,
			fire_at INTEGER NOT NULL,
			recurrence TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_fired_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS reminders_fire_at_idx ON reminders (fire_at ASC);
		`,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure reminders table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, message string, fireAt time.Time, rec model.Recurrence) (model.Reminder, error) {
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
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Message, r.FireAt.UnixMilli(), r.Recurrence.String(), string(r.Status), r.CreatedAt.UnixMilli())
	if err != nil {
		return model.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	return r, nil
}

const sqliteSelect = `
	SELECT id, message, fire_at, recurrence, status, created_at, last_fired_at
	FROM reminders
`

func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Reminder, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+`WHERE id = ?`, id)
	r, err := scanReminderRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reminder{}, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]model.Reminder, error) {
	q := sqliteSelect
	var args []any
	if f.Status != "" {
		q += `WHERE status = ? `
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

func (s *SQLiteStore) Due(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelect+`
		WHERE status = ? AND fire_at <= ?
		ORDER BY fire_at ASC, id ASC
	`, string(model.StatusPending), now.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

func (s *SQLiteStore) MarkFired(ctx context.Context, id string, firedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET status = ?, last_fired_at = ?
		WHERE id = ? AND status = ?
	`, string(model.StatusFired), firedAt.UTC().UnixMilli(), id, string(model.StatusPending))
	return s.afterConditional(ctx, res, err, id, model.StatusFired)
}

func (s *SQLiteStore) Rearm(ctx context.Context, id string, nextFireAt, firedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET fire_at = ?, last_fired_at = ?
		WHERE id = ? AND status = ?
	`, nextFireAt.UTC().UnixMilli(), firedAt.UTC().UnixMilli(), id, string(model.StatusPending))
	return s.afterConditional(ctx, res, err, id, model.StatusPending)
}

func (s *SQLiteStore) Cancel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET status = ?
		WHERE id = ? AND status = ?
	`, string(model.StatusCancelled), id, string(model.StatusPending))
	return s.afterConditional(ctx, res, err, id, model.StatusCancelled)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
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

func (s *SQLiteStore) afterConditional(ctx context.Context, res sql.Result, err error, id string, to model.Status) error {
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

// scanReminderRow decodes one row from either SQL store's millisecond
// representation.
func scanReminderRow(scan func(dest ...any) error) (model.Reminder, error) {
	var (
		r                  model.Reminder
		fireAt, createdAt  int64
		lastFiredAt        sql.NullInt64
		recurrence, status string
	)
	err := scan(&r.ID, &r.Message, &fireAt, &recurrence, &status, &createdAt, &lastFiredAt)
	if err != nil {
		return model.Reminder{}, err
	}

	r.FireAt = time.UnixMilli(fireAt).UTC()
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	r.Status = model.Status(status)
	if lastFiredAt.Valid {
		t := time.UnixMilli(lastFiredAt.Int64).UTC()
		r.LastFiredAt = &t
	}
	r.Recurrence, err = model.ParseRecurrence(recurrence)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("stored recurrence for %s: %w", r.ID, err)
	}
	return r, nil
}

func collectReminders(rows *sql.Rows) ([]model.Reminder, error) {
	var out []model.Reminder
	for rows.Next() {
		r, err := scanReminderRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
