package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementLine  = "handshake_line"
	MeasurementEvent = "machine_event"
)

// WriteLineLevel records one handshake line or actuator write.
// duty is only stored for PWM channels (non-zero duty).
func (c *Client) WriteLineLevel(line, phase string, asserted bool, duty uint32, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(linePoint(c.site, line, phase, asserted, duty, at))
}

// WriteTransition records one accepted state machine event.
func (c *Client) WriteTransition(event, from, to, phase string, ready bool, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(eventPoint(c.site, event, from, to, phase, ready, at))
}

func linePoint(site, line, phase string, asserted bool, duty uint32, at time.Time) *write.Point {
	tags := map[string]string{"site": site, "line": line}
	if phase != "" {
		tags["phase"] = phase
	}
	fields := map[string]any{"asserted": asserted}
	if duty > 0 {
		fields["duty"] = int64(duty)
	}
	return write.NewPoint(MeasurementLine, tags, fields, at)
}

func eventPoint(site, event, from, to, phase string, ready bool, at time.Time) *write.Point {
	tags := map[string]string{"site": site, "event": event}
	if phase != "" {
		tags["phase"] = phase
	}
	return write.NewPoint(MeasurementEvent, tags, map[string]any{
		"from":  from,
		"to":    to,
		"ready": ready,
	}, at)
}
