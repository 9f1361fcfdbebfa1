// Package status connects the machine controller to the MQTT bus.
//
// Publisher is a machine.Observer that mirrors every transition and
// handshake line write onto the broker. Notifications arrive with the
// controller lock held, so they are queued and published from a separate
// goroutine (Publisher.Run); a full queue drops the message and logs it.
//
// Commands parses operator commands from the command topic and hands them
// to the main loop through a channel. The main loop is the only caller of
// the controller, which keeps dispatch run-to-completion.
//
// Command payloads are plain text:
//
//	start | stop | run_spraying | run_tending
//	complete:spraying | complete:tending
//	arm | disarm
package status
