package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// SQLiteRepository хранит заявки и воронку в одном файле SQLite
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// один writer; для :memory: ещё и одна общая база
	db.SetMaxOpenConns(1)

	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS leads (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    chat_id INTEGER NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    lots TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    bedrooms TEXT NOT NULL DEFAULT '',
    budget TEXT NOT NULL DEFAULT '',
    checkin TEXT NOT NULL DEFAULT '',
    checkout TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    contact TEXT NOT NULL DEFAULT '',
    transfer TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
CREATE TABLE IF NOT EXISTS funnel_hits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    state TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_funnel_hits_state_user ON funnel_hits(state, user_id);
`)
	return err
}

func (r *SQLiteRepository) AppendLead(ctx context.Context, row model.LeadRow) (bool, error) {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO leads(id, created_at, chat_id, username, lots, name, location, bedrooms, budget,
                  checkin, checkout, type, notes, contact, transfer)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		row.ID, row.CreatedAt.UTC(), row.ChatID, row.Username, row.Lot, row.Name, row.District,
		row.Bedrooms, row.Budget, row.CheckIn, row.CheckOut, row.Type, row.Notes, row.Contact, row.Transfer)
	if err != nil {
		return false, fmt.Errorf("failed to insert lead: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) RecentLeads(ctx context.Context, filter LeadFilter) ([]model.LeadRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, created_at, chat_id, username, lots, name, location, bedrooms, budget,
       checkin, checkout, type, notes, contact, transfer
FROM leads ORDER BY created_at DESC, rowid DESC LIMIT ?`, filter.limit())
	if err != nil {
		return nil, fmt.Errorf("failed to get leads: %w", err)
	}
	defer rows.Close()

	out := make([]model.LeadRow, 0, filter.limit())
	for rows.Next() {
		var l model.LeadRow
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.ChatID, &l.Username, &l.Lot, &l.Name, &l.District,
			&l.Bedrooms, &l.Budget, &l.CheckIn, &l.CheckOut, &l.Type, &l.Notes, &l.Contact, &l.Transfer); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Hit и Counts: воронка в той же базе
func (r *SQLiteRepository) Hit(state model.State, userID int64) error {
	_, err := r.db.Exec(`INSERT INTO funnel_hits(user_id, state, created_at) VALUES(?,?,?)`,
		userID, state.String(), time.Now().UTC())
	return err
}

func (r *SQLiteRepository) Counts() (map[model.State]int, error) {
	rows, err := r.db.Query(`SELECT state, COUNT(DISTINCT user_id) FROM funnel_hits GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to count funnel: %w", err)
	}
	defer rows.Close()

	out := map[model.State]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan funnel: %w", err)
		}
		if st, ok := model.ParseState(name); ok {
			out[st] = n
		}
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
