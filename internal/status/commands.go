package status

import (
	"fmt"
	"strings"

	"github.com/tendbot/tendbot-core/internal/machine"
)

// CommandKind names an operator command.
type CommandKind string

const (
	CmdStart       CommandKind = "start"
	CmdStop        CommandKind = "stop"
	CmdRunSpraying CommandKind = "run_spraying"
	CmdRunTending  CommandKind = "run_tending"
	CmdComplete    CommandKind = "complete"
	CmdArm         CommandKind = "arm"
	CmdDisarm      CommandKind = "disarm"
)

// Command is one parsed operator command. Phase is set for CmdComplete only.
type Command struct {
	Kind  CommandKind
	Phase machine.PhaseID
}

func (c Command) String() string {
	if c.Kind == CmdComplete {
		return fmt.Sprintf("%s:%s", c.Kind, c.Phase)
	}
	return string(c.Kind)
}

// ParseCommand parses a command payload. Surrounding whitespace and case
// are ignored.
func ParseCommand(payload []byte) (Command, error) {
	s := strings.ToLower(strings.TrimSpace(string(payload)))

	if rest, ok := strings.CutPrefix(s, string(CmdComplete)+":"); ok {
		ph, err := machine.ParsePhase(rest)
		if err != nil || ph == machine.NoPhase {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
		}
		return Command{Kind: CmdComplete, Phase: ph}, nil
	}

	switch k := CommandKind(s); k {
	case CmdStart, CmdStop, CmdRunSpraying, CmdRunTending, CmdArm, CmdDisarm:
		return Command{Kind: k}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
}

// Machine is the controller surface commands are applied to.
type Machine interface {
	Start() error
	Stop() error
	RunSpraying() error
	RunTending() error
	TaskCompleted(machine.PhaseID) error
	SetReady(bool)
}

var _ Machine = (*machine.Controller)(nil)

// Apply dispatches cmd to m.
func Apply(m Machine, cmd Command) error {
	switch cmd.Kind {
	case CmdStart:
		return m.Start()
	case CmdStop:
		return m.Stop()
	case CmdRunSpraying:
		return m.RunSpraying()
	case CmdRunTending:
		return m.RunTending()
	case CmdComplete:
		return m.TaskCompleted(cmd.Phase)
	case CmdArm:
		m.SetReady(true)
		return nil
	case CmdDisarm:
		m.SetReady(false)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}

// SubscribeCommands subscribes to the command topic and delivers parsed
// commands to out. A malformed payload or a full channel is reported to
// the broker client as a handler error (logged there); nothing blocks.
func SubscribeCommands(b Broker, out chan<- Command, logger Logger) error {
	if logger == nil {
		logger = noopLogger{}
	}
	return b.Subscribe(b.Topics().Command(), b.QoS(), func(_ string, payload []byte) error {
		cmd, err := ParseCommand(payload)
		if err != nil {
			return err
		}
		select {
		case out <- cmd:
			logger.Debug("command received", "command", cmd.String())
			return nil
		default:
			return fmt.Errorf("%w: dropped %s", ErrQueueFull, cmd)
		}
	})
}
