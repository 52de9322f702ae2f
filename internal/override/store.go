package override

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS overrides (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	nik         TEXT NOT NULL DEFAULT '',
	date        TEXT NOT NULL,
	status      TEXT NOT NULL,
	note        TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Store keeps the override table between runs. It is append-only: rows are
// added singly or by sheet import, removed by id, or cleared wholesale.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open override store: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize override schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Add(ctx context.Context, rec Record) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO overrides (name, nik, date, status, note) VALUES (?, ?, ?, ?, ?)`,
		rec.Name, rec.NIK, rec.DateKey(), rec.Status, rec.Note)
	if err != nil {
		return 0, fmt.Errorf("insert override: %w", err)
	}
	return res.LastInsertId()
}

// AddAll appends imported rows in sheet order inside one transaction, so a
// partial import never commits.
func (s *Store) AddAll(ctx context.Context, recs []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO overrides (name, nik, date, status, note) VALUES (?, ?, ?, ?, ?)`,
			rec.Name, rec.NIK, rec.DateKey(), rec.Status, rec.Note); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert override: %w", err)
		}
	}
	return tx.Commit()
}

// List returns every stored override in insertion order, which is the order
// the merge stage's last-wins rule depends on.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, nik, date, status, note FROM overrides ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var dateRaw string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.NIK, &dateRaw, &rec.Status, &rec.Note); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if parsed, err := time.ParseInLocation("2006-01-02", dateRaw, time.UTC); err == nil {
			rec.Date = parsed
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Remove(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM overrides WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove override: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("override %d not found", id)
	}
	return nil
}

// Reset clears the whole table.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM overrides`); err != nil {
		return fmt.Errorf("reset overrides: %w", err)
	}
	return nil
}
