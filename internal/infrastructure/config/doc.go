// Package config handles loading and validating tendbot configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (TENDBOT_*)
//   - Validation of value ranges
//   - Resolving device lines to pins and polarities
//   - Mechanism speed profiles (slow, normal, fast) selected by machine.speed
//
// Security Considerations:
//   - Broker and InfluxDB credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Device keys are looked up lazily: Validate only checks the values that
// are present, and Lines.Lookup / DevicesConfig.LookupStepper return
// ErrMissingKey naming the full key path when a line is absent.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	line, err := cfg.Devices.PiToPLC.Lookup("pi_to_plc", "tending-ready")
package config
