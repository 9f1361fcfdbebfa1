// Package logging provides structured logging for tendbot.
//
// This package wraps Go's standard log/slog package so every component
// (device bring-up, the state machine, the journal, the MQTT bridge)
// logs with the same shape.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for bench work (human-readable)
//   - Default fields (service, version, site) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version, cfg.Site.ID)
//	logger.Info("transition", "from", "idle", "to", "running")
//
// Never log broker passwords or InfluxDB tokens.
package logging
