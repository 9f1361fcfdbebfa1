// Package telemetry feeds controller notifications into InfluxDB.
package telemetry

import (
	"time"

	"github.com/tendbot/tendbot-core/internal/infrastructure/influxdb"
	"github.com/tendbot/tendbot-core/internal/machine"
)

// Writer is the part of influxdb.Client the Recorder uses. Writes must
// not block: they run with the controller lock held.
type Writer interface {
	WriteLineLevel(line, phase string, asserted bool, duty uint32, at time.Time)
	WriteTransition(event, from, to, phase string, ready bool, at time.Time)
}

var _ Writer = (*influxdb.Client)(nil)

// Recorder is a machine.Observer writing every notification as a point.
type Recorder struct {
	w Writer
}

var _ machine.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder over w.
func NewRecorder(w Writer) *Recorder {
	return &Recorder{w: w}
}

// OnTransition implements machine.Observer.
func (r *Recorder) OnTransition(t machine.Transition) {
	r.w.WriteTransition(t.Event.String(), t.From.String(), t.To.String(), t.Phase.String(), t.Snapshot.Ready, t.At)
}

// OnLineChange implements machine.Observer.
func (r *Recorder) OnLineChange(lc machine.LineChange) {
	r.w.WriteLineLevel(string(lc.ID), lc.Phase.String(), lc.Asserted, lc.Duty, lc.At)
}
