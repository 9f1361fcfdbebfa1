package mqtt

import "fmt"

// TopicRoot is the first level of every tendbot topic.
const TopicRoot = "tendbot"

// Topics builds the topic names of one site.
//
//	topics := mqtt.NewTopics("bench-01")
//	topics.Line("tending-ready")
//	// Returns: "tendbot/bench-01/line/tending-ready"
type Topics struct {
	site string
}

// NewTopics returns the topic builder for site.
func NewTopics(site string) Topics {
	return Topics{site: site}
}

// Site returns the site id the topics are scoped to.
func (t Topics) Site() string {
	return t.site
}

func (t Topics) prefix() string {
	return fmt.Sprintf("%s/%s", TopicRoot, t.site)
}

// SystemStatus carries the retained online/offline status and the LWT.
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// MachineState carries the retained controller snapshot.
func (t Topics) MachineState() string {
	return t.prefix() + "/machine/state"
}

// MachineTransition carries one message per accepted event.
func (t Topics) MachineTransition() string {
	return t.prefix() + "/machine/transition"
}

// Line carries the retained level of one handshake line or actuator.
func (t Topics) Line(id string) string {
	return fmt.Sprintf("%s/line/%s", t.prefix(), id)
}

// AllLines matches every line topic of the site.
func (t Topics) AllLines() string {
	return t.prefix() + "/line/+"
}

// Command is the inbound operator command topic.
func (t Topics) Command() string {
	return t.prefix() + "/command"
}

// All matches every topic of the site.
func (t Topics) All() string {
	return t.prefix() + "/#"
}
