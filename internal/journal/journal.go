package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tendbot/tendbot-core/internal/device"
	"github.com/tendbot/tendbot-core/internal/machine"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// ErrRunRequired is returned when a query or insert has no run id.
var ErrRunRequired = errors.New("journal: run id is required")

// TransitionEntry is one stored transition.
type TransitionEntry struct {
	ID                int64     `json:"id"`
	RunID             string    `json:"run_id"`
	Event             string    `json:"event"`
	From              string    `json:"from"`
	To                string    `json:"to"`
	Phase             string    `json:"phase,omitempty"`
	Ready             bool      `json:"ready"`
	SprayingCompleted bool      `json:"spraying_completed"`
	TendingCompleted  bool      `json:"tending_completed"`
	At                time.Time `json:"at"`
}

// LineEntry is one stored line write.
type LineEntry struct {
	ID       int64     `json:"id"`
	RunID    string    `json:"run_id"`
	LineID   device.ID `json:"line_id"`
	Asserted bool      `json:"asserted"`
	Duty     uint32    `json:"duty,omitempty"`
	Phase    string    `json:"phase,omitempty"`
	At       time.Time `json:"at"`
}

// Journal stores machine history in the transitions and line_changes tables.
//
// Thread Safety:
//   - Safe for concurrent use; serialisation is left to database/sql.
type Journal struct {
	db *sql.DB
}

// New creates a Journal over an open, migrated database.
func New(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// RecordTransition stores t under runID.
func (j *Journal) RecordTransition(ctx context.Context, runID string, t machine.Transition) error {
	if runID == "" {
		return ErrRunRequired
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO transitions
		 (run_id, event, from_state, to_state, phase, ready, spraying_completed, tending_completed, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		t.Event.String(),
		t.From.String(),
		t.To.String(),
		t.Phase.String(),
		t.Snapshot.Ready,
		t.Snapshot.Spraying.Completed,
		t.Snapshot.Tending.Completed,
		t.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting transition: %w", err)
	}
	return nil
}

// RecordLineChange stores lc under runID.
func (j *Journal) RecordLineChange(ctx context.Context, runID string, lc machine.LineChange) error {
	if runID == "" {
		return ErrRunRequired
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO line_changes (run_id, line_id, asserted, duty, phase, at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		string(lc.ID),
		lc.Asserted,
		int64(lc.Duty),
		lc.Phase.String(),
		lc.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting line change: %w", err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Transitions returns up to limit transitions of runID, oldest first.
func (j *Journal) Transitions(ctx context.Context, runID string, limit int) ([]TransitionEntry, error) {
	if runID == "" {
		return nil, ErrRunRequired
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, run_id, event, from_state, to_state, phase, ready,
		        spraying_completed, tending_completed, at
		 FROM transitions
		 WHERE run_id = ?
		 ORDER BY id
		 LIMIT ?`,
		runID, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	var entries []TransitionEntry
	for rows.Next() {
		var e TransitionEntry
		var at string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Event, &e.From, &e.To, &e.Phase,
			&e.Ready, &e.SprayingCompleted, &e.TendingCompleted, &at); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing transition time: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}
	return entries, nil
}

// LineChanges returns up to limit line writes of runID, oldest first.
func (j *Journal) LineChanges(ctx context.Context, runID string, limit int) ([]LineEntry, error) {
	if runID == "" {
		return nil, ErrRunRequired
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, run_id, line_id, asserted, duty, phase, at
		 FROM line_changes
		 WHERE run_id = ?
		 ORDER BY id
		 LIMIT ?`,
		runID, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying line changes: %w", err)
	}
	defer rows.Close()

	var entries []LineEntry
	for rows.Next() {
		var e LineEntry
		var lineID, at string
		var duty int64
		if err := rows.Scan(&e.ID, &e.RunID, &lineID, &e.Asserted, &duty, &e.Phase, &at); err != nil {
			return nil, fmt.Errorf("scanning line change: %w", err)
		}
		e.LineID = device.ID(lineID)
		e.Duty = uint32(duty) //nolint:gosec // written from a uint32
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing line change time: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line changes: %w", err)
	}
	return entries, nil
}

// LastRun returns the most recent run id, or "" if the journal is empty.
func (j *Journal) LastRun(ctx context.Context) (string, error) {
	var runID string
	err := j.db.QueryRowContext(ctx,
		"SELECT run_id FROM transitions ORDER BY id DESC LIMIT 1",
	).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying last run: %w", err)
	}
	return runID, nil
}
