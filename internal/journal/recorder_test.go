package journal

import (
	"context"
	"sync"
	"testing"

	"github.com/tendbot/tendbot-core/internal/device"
	"github.com/tendbot/tendbot-core/internal/machine"
)

type warnLog struct {
	mu   sync.Mutex
	msgs []string
}

func (l *warnLog) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func TestRecorder_WritesUnderOneRun(t *testing.T) {
	j := openTestJournal(t)
	r := NewRecorder(j, nil)

	if r.RunID() == "" {
		t.Fatal("RunID() is empty")
	}
	if other := NewRecorder(j, nil); other.RunID() == r.RunID() {
		t.Error("two recorders share a run id")
	}

	r.OnTransition(machine.Transition{Event: machine.EventStart, From: machine.Idle, To: machine.Running, At: t0})
	r.OnLineChange(machine.LineChange{ID: device.SprayingReady, Asserted: true, Phase: machine.Spraying, At: t0})

	ctx := context.Background()
	trs, err := j.Transitions(ctx, r.RunID(), 0)
	if err != nil || len(trs) != 1 {
		t.Fatalf("Transitions() = %v, %v; want 1 entry", trs, err)
	}
	lines, err := j.LineChanges(ctx, r.RunID(), 0)
	if err != nil || len(lines) != 1 {
		t.Fatalf("LineChanges() = %v, %v; want 1 entry", lines, err)
	}
}

func TestRecorder_LogsWriteFailure(t *testing.T) {
	j := openTestJournal(t)
	if _, err := j.db.Exec("DROP TABLE line_changes"); err != nil {
		t.Fatalf("dropping table: %v", err)
	}

	log := &warnLog{}
	r := NewRecorder(j, log)
	r.OnLineChange(machine.LineChange{ID: device.Spray, Asserted: true, At: t0})

	if len(log.msgs) != 1 {
		t.Errorf("logged %d warnings, want 1", len(log.msgs))
	}
}
