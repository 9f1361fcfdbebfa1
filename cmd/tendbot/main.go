// tendbot drives the spraying/tending machine.
//
// The process brings up the GPIO devices, starts the machine controller,
// feeds it operator commands from MQTT, watches the PLC e-stop line and
// stops the machine on shutdown. Every transition and handshake line write
// is journalled to SQLite and, when enabled, mirrored to MQTT and InfluxDB.
package main

import (
	"fmt"
	"os"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
