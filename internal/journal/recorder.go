package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tendbot/tendbot-core/internal/machine"
)

// writeTimeout bounds each journal insert made from an observer callback.
const writeTimeout = 2 * time.Second

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Recorder is a machine.Observer that writes every notification to a
// Journal under one run id. Write failures are logged, never returned:
// the controller must not stall on its audit trail.
type Recorder struct {
	journal *Journal
	runID   string
	logger  Logger
}

var _ machine.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with a fresh run id.
func NewRecorder(j *Journal, logger Logger) *Recorder {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Recorder{journal: j, runID: uuid.NewString(), logger: logger}
}

// RunID returns the id this recorder writes under.
func (r *Recorder) RunID() string {
	return r.runID
}

// OnTransition implements machine.Observer.
func (r *Recorder) OnTransition(t machine.Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.journal.RecordTransition(ctx, r.runID, t); err != nil {
		r.logger.Warn("journal transition write failed", "event", t.Event.String(), "error", err)
	}
}

// OnLineChange implements machine.Observer.
func (r *Recorder) OnLineChange(lc machine.LineChange) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.journal.RecordLineChange(ctx, r.runID, lc); err != nil {
		r.logger.Warn("journal line write failed", "line", string(lc.ID), "error", err)
	}
}
