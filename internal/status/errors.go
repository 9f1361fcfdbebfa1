package status

import "errors"

var (
	// ErrUnknownCommand is returned for payloads that name no command.
	ErrUnknownCommand = errors.New("status: unknown command")

	// ErrQueueFull is returned when a command arrives faster than the
	// main loop consumes them.
	ErrQueueFull = errors.New("status: command queue full")
)
