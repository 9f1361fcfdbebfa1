package status

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tendbot/tendbot-core/internal/machine"
)

// DefaultQueueSize is the Publisher queue length used when none is given.
const DefaultQueueSize = 256

// LinePayload is published, retained, on the line topic of each write.
type LinePayload struct {
	Asserted bool            `json:"asserted"`
	Duty     uint32          `json:"duty,omitempty"`
	Phase    machine.PhaseID `json:"phase"`
	At       time.Time       `json:"at"`
}

type message struct {
	topic    string
	payload  []byte
	retained bool
}

// Publisher mirrors controller notifications onto the broker.
type Publisher struct {
	broker Broker
	queue  chan message
	logger Logger
}

var _ machine.Observer = (*Publisher)(nil)

// NewPublisher creates a Publisher. queueSize <= 0 selects DefaultQueueSize.
func NewPublisher(b Broker, queueSize int, logger Logger) *Publisher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Publisher{broker: b, queue: make(chan message, queueSize), logger: logger}
}

// OnTransition implements machine.Observer. The transition itself goes to
// the transition topic and the resulting snapshot replaces the retained
// machine state.
func (p *Publisher) OnTransition(t machine.Transition) {
	topics := p.broker.Topics()
	p.enqueue(topics.MachineTransition(), t, false)
	p.enqueue(topics.MachineState(), t.Snapshot, true)
}

// OnLineChange implements machine.Observer.
func (p *Publisher) OnLineChange(lc machine.LineChange) {
	p.enqueue(p.broker.Topics().Line(string(lc.ID)), LinePayload{
		Asserted: lc.Asserted,
		Duty:     lc.Duty,
		Phase:    lc.Phase,
		At:       lc.At,
	}, true)
}

// PublishSnapshot publishes s as the retained machine state, bypassing
// the queue. Called once at startup, before Start, so subscribers see the
// idle state.
func (p *Publisher) PublishSnapshot(s machine.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.broker.Publish(p.broker.Topics().MachineState(), data, p.broker.QoS(), true)
}

func (p *Publisher) enqueue(topic string, v any, retained bool) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("status payload encode failed", "topic", topic, "error", err)
		return
	}
	select {
	case p.queue <- message{topic: topic, payload: data, retained: retained}:
	default:
		p.logger.Warn("status queue full, dropping message", "topic", topic)
	}
}

// Run publishes queued messages until ctx is cancelled, then drains what
// is already queued.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case msg := <-p.queue:
			p.publish(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-p.queue:
					p.publish(msg)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) publish(msg message) {
	if err := p.broker.Publish(msg.topic, msg.payload, p.broker.QoS(), msg.retained); err != nil {
		p.logger.Warn("status publish failed", "topic", msg.topic, "error", err)
	}
}
