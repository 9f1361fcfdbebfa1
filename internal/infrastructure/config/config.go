package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for tendbot.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Machine    MachineConfig    `yaml:"machine"`
	Mechanisms MechanismsConfig `yaml:"mechanisms"`
	Devices    DevicesConfig    `yaml:"devices"`
}

// SiteConfig identifies the machine installation.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings for the machine journal.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MachineConfig contains state machine settings.
type MachineConfig struct {
	// Ready arms the machine so Start is accepted. Defaults to false:
	// an installation that never arms readiness can never start.
	Ready bool `yaml:"ready"`

	// Speed selects the mechanism speed profile in use.
	Speed Speed `yaml:"speed"`

	// PollInterval is how often PLC input lines are sampled (milliseconds).
	PollInterval int `yaml:"poll_interval"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: TENDBOT_SECTION_KEY
// For example: TENDBOT_DATABASE_PATH, TENDBOT_MACHINE_READY
//
// Device lines are not checked here; a missing line key is reported by
// Lookup when the device layer brings the hardware up.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "tendbot-001",
			Name: "tendbot",
		},
		Database: DatabaseConfig{
			Path:        "./data/tendbot.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "tendbot-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Machine: MachineConfig{
			Speed:        SpeedNormal,
			PollInterval: 50,
		},
		Mechanisms: MechanismsConfig{
			Spraying: defaultMechanism(0),
			Tending:  defaultMechanism(64),
			Homing:   defaultMechanism(0),
			Cleaning: defaultMechanism(0),
			Fault:    FaultMechanism{Mechanism: defaultMechanism(0)},
		},
		Devices: DevicesConfig{
			Backend: BackendRPIO,
			FingerPWM: PWMConfig{
				Frequency: 1000,
				Range:     255,
			},
			Analog: AnalogConfig{
				Bus:     1,
				Address: 0x48,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: TENDBOT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TENDBOT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("TENDBOT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("TENDBOT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("TENDBOT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("TENDBOT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("TENDBOT_DEVICES_BACKEND"); v != "" {
		cfg.Devices.Backend = v
	}

	if v := os.Getenv("TENDBOT_MACHINE_SPEED"); v != "" {
		cfg.Machine.Speed = Speed(v)
	}

	// Readiness is an operator decision, so it can be armed without editing the file.
	if v := os.Getenv("TENDBOT_MACHINE_READY"); v != "" {
		if ready, err := strconv.ParseBool(v); err == nil {
			cfg.Machine.Ready = ready
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Machine.PollInterval <= 0 {
		errs = append(errs, "machine.poll_interval must be positive")
	}
	if _, err := c.Mechanisms.Tending.Speed.Profile(c.Machine.Speed); err != nil {
		errs = append(errs, "machine.speed must be slow, normal, or fast")
	}

	errs = append(errs, c.Mechanisms.validate(c.Devices.FingerPWM.Range)...)
	errs = append(errs, c.Devices.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SpeedProfile returns the profile of mechanism at the configured speed.
func (c *Config) SpeedProfile(mechanism string) (SpeedProfile, error) {
	m, err := c.Mechanisms.Lookup(mechanism)
	if err != nil {
		return SpeedProfile{}, err
	}
	return m.Speed.Profile(c.Machine.Speed)
}

// TendingDutyCycle returns the finger duty of the tending profile at the
// configured speed.
func (c *Config) TendingDutyCycle() uint32 {
	p, err := c.SpeedProfile(MechanismTending)
	if err != nil {
		return 0
	}
	return p.DutyCycle
}

// GetPollInterval returns the PLC input poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Machine.PollInterval) * time.Millisecond
}
