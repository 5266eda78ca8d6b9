// Package history keeps local snapshots of the conversation and the code
// pad, so a session survives the assistant being closed mid-interview.
// Snapshots live in a SQLite file next to the agent.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Geeklady55/Interview-assistant1/internal/assist/orchestrate"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT NOT NULL,
	session_id TEXT NOT NULL,
	saved_at   INTEGER NOT NULL,
	code       TEXT NOT NULL DEFAULT '',
	language   TEXT NOT NULL DEFAULT '',
	turns      TEXT NOT NULL,
	PRIMARY KEY (session_id, id)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_session_saved ON snapshots(session_id, saved_at);
`

type Snapshot struct {
	ID       string             `json:"id"`
	SavedAt  time.Time          `json:"saved_at"`
	Code     string             `json:"code,omitempty"`
	Language string             `json:"language,omitempty"`
	Turns    []orchestrate.Turn `json:"turns"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	const op = "history.Open"

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to open history database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, utils.E(utils.CodeUnavailable, op, "failed to prepare history schema", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save persists a snapshot. Writing an existing ID overwrites it, so the
// newest write for a slot wins.
func (s *Store) Save(ctx context.Context, sessionID string, snap Snapshot) (Snapshot, error) {
	const op = "history.Store.Save"

	if sessionID == "" {
		return Snapshot{}, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = s.now().UTC()
	}
	if snap.ID == "" {
		snap.ID = strconv.FormatInt(snap.SavedAt.UnixMilli(), 10)
	}
	if snap.Turns == nil {
		snap.Turns = []orchestrate.Turn{}
	}

	turns, err := json.Marshal(snap.Turns)
	if err != nil {
		return Snapshot{}, utils.E(utils.CodeInternal, op, "failed to encode turns", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, session_id, saved_at, code, language, turns)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, id) DO UPDATE SET
			saved_at = excluded.saved_at,
			code     = excluded.code,
			language = excluded.language,
			turns    = excluded.turns`,
		snap.ID, sessionID, snap.SavedAt.UnixMilli(), snap.Code, snap.Language, string(turns))
	if err != nil {
		return Snapshot{}, utils.E(utils.CodeUnavailable, op, "failed to save snapshot", err)
	}
	return snap, nil
}

// List returns a session's snapshots, newest first.
func (s *Store) List(ctx context.Context, sessionID string) ([]Snapshot, error) {
	const op = "history.Store.List"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, saved_at, code, language, turns
		FROM snapshots WHERE session_id = ?
		ORDER BY saved_at DESC`, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to list snapshots", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to decode snapshot", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to list snapshots", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, sessionID, id string) (Snapshot, error) {
	const op = "history.Store.Get"

	row := s.db.QueryRowContext(ctx, `
		SELECT id, saved_at, code, language, turns
		FROM snapshots WHERE session_id = ? AND id = ?`, sessionID, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, utils.E(utils.CodeNotFound, op, "snapshot not found", err)
	}
	if err != nil {
		return Snapshot{}, utils.E(utils.CodeInternal, op, "failed to decode snapshot", err)
	}
	return snap, nil
}

func (s *Store) Delete(ctx context.Context, sessionID, id string) error {
	const op = "history.Store.Delete"

	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE session_id = ? AND id = ?`, sessionID, id)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to delete snapshot", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.E(utils.CodeNotFound, op, "snapshot not found", nil)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (Snapshot, error) {
	var (
		snap    Snapshot
		savedAt int64
		turns   string
	)
	if err := r.Scan(&snap.ID, &savedAt, &snap.Code, &snap.Language, &turns); err != nil {
		return Snapshot{}, err
	}
	snap.SavedAt = time.UnixMilli(savedAt).UTC()
	if err := json.Unmarshal([]byte(turns), &snap.Turns); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
