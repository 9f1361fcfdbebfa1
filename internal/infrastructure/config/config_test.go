package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validDevicesYAML = `
devices:
  backend: sim
  pi_to_plc:
    spraying-ready: {pin: 5, active_state: true}
    spraying-running: {pin: 6, active_state: true}
    spraying-complete: {pin: 13, active_state: true}
    tending-ready: {pin: 16, active_state: true}
    tending-running: {pin: 20, active_state: true}
    tending-complete: {pin: 21, active_state: false}
  plc_to_pi:
    e-stop: {pin: 4, active_state: false}
  limit_switch:
    x: {pin: 0, active_state: false}
  spray: {pin: 17, active_state: true}
  finger: {pin: 18, active_state: true}
  finger_pwm:
    frequency: 2000
    range: 100
  stepper:
    x:
      step_pin: 23
      dir_pin: 24
      enable_pin: 25
      microsteps: 16
      rpm: 120
      acceleration: 500
      deceleration: 500
      step_active_state: true
      dir_active_state: true
      enable_active_state: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
machine:
  ready: true
  speed: fast
mechanisms:
  tending:
    speed:
      fast:
        x: {rpm: 200, acceleration: 800, deceleration: 800}
        duty_cycle: 40
  fault:
    manual:
      movement: {x: 5, y: 5}
` + validDevicesYAML

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.Machine.Ready {
		t.Error("Machine.Ready = false, want true")
	}
	if got := cfg.TendingDutyCycle(); got != 40 {
		t.Errorf("TendingDutyCycle() = %d, want 40", got)
	}
	fast, err := cfg.SpeedProfile(MechanismTending)
	if err != nil {
		t.Fatalf("SpeedProfile(tending) error = %v", err)
	}
	if fast.X.RPM != 200 {
		t.Errorf("tending fast x rpm = %v, want 200", fast.X.RPM)
	}
	// Axes the file leaves out keep their defaults.
	if fast.Y.RPM != 120 {
		t.Errorf("tending fast y rpm = %v, want default 120", fast.Y.RPM)
	}
	if v, err := cfg.Mechanisms.ManualMovement("y"); err != nil || v != 5 {
		t.Errorf("ManualMovement(y) = %v, %v, want 5", v, err)
	}
	if _, err := cfg.Mechanisms.ManualMovement("z"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("ManualMovement(z) error = %v, want ErrMissingKey", err)
	}
	if cfg.Devices.Backend != BackendSim {
		t.Errorf("Devices.Backend = %q, want %q", cfg.Devices.Backend, BackendSim)
	}
	if cfg.Devices.FingerPWM.Range != 100 {
		t.Errorf("Devices.FingerPWM.Range = %d, want 100", cfg.Devices.FingerPWM.Range)
	}

	// Defaults survive for keys the file leaves out.
	if cfg.Devices.Analog.Address != 0x48 {
		t.Errorf("Devices.Analog.Address = %#x, want 0x48", cfg.Devices.Analog.Address)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
database:
  path: "/tmp/test.db"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestLoad_MissingDeviceKeysIsNotAValidationError(t *testing.T) {
	content := `
site:
  id: "bench"
devices:
  backend: sim
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = cfg.Devices.PiToPLC.Lookup("pi_to_plc", "tending-ready")
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("Lookup() error = %v, want ErrMissingKey", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Devices.Backend = BackendSim
		return cfg
	}
	pin := func(n int) *int { return &n }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing site ID",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: "site.id",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.url",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Devices.Backend = "gpiod" },
			wantErr: "devices.backend",
		},
		{
			name:    "non-positive poll interval",
			mutate:  func(c *Config) { c.Machine.PollInterval = 0 },
			wantErr: "machine.poll_interval",
		},
		{
			name:    "duty cycle above range",
			mutate:  func(c *Config) { c.Mechanisms.Tending.Speed.Normal.DutyCycle = 300 },
			wantErr: "mechanisms.tending.speed.normal.duty_cycle",
		},
		{
			name:    "zero pwm range",
			mutate:  func(c *Config) { c.Devices.FingerPWM.Range = 0 },
			wantErr: "devices.finger_pwm.range",
		},
		{
			name:    "unknown speed",
			mutate:  func(c *Config) { c.Machine.Speed = "ludicrous" },
			wantErr: "machine.speed",
		},
		{
			name:    "non-positive profile rpm",
			mutate:  func(c *Config) { c.Mechanisms.Homing.Speed.Slow.Z.RPM = 0 },
			wantErr: "mechanisms.homing.speed.slow.z.rpm",
		},
		{
			name:    "negative profile acceleration",
			mutate:  func(c *Config) { c.Mechanisms.Fault.Speed.Fast.Y.Acceleration = -1 },
			wantErr: "mechanisms.fault.speed.fast.y",
		},
		{
			name:    "manual movement on unknown axis",
			mutate:  func(c *Config) { c.Mechanisms.Fault.Manual.Movement = map[string]float64{"w": 1} },
			wantErr: "mechanisms.fault.manual.movement.w",
		},
		{
			name:    "non-positive manual movement",
			mutate:  func(c *Config) { c.Mechanisms.Fault.Manual.Movement = map[string]float64{"x": 0} },
			wantErr: "mechanisms.fault.manual.movement.x",
		},
		{
			name: "pin out of range",
			mutate: func(c *Config) {
				c.Devices.PiToPLC = Lines{"tending-ready": {Pin: pin(40)}}
			},
			wantErr: "devices.pi_to_plc.tending-ready.pin",
		},
		{
			name: "stepper pin out of range",
			mutate: func(c *Config) {
				c.Devices.Stepper = map[string]StepperConfig{"z": {StepPin: pin(-1)}}
			},
			wantErr: "devices.stepper.z.step_pin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetPollInterval(t *testing.T) {
	cfg := &Config{Machine: MachineConfig{PollInterval: 25}}

	if got := cfg.GetPollInterval(); got != 25*time.Millisecond {
		t.Errorf("GetPollInterval() = %v, want 25ms", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("TENDBOT_DATABASE_PATH", "/custom/path.db")
	t.Setenv("TENDBOT_MQTT_HOST", "mqtt.example.com")
	t.Setenv("TENDBOT_MQTT_USERNAME", "testuser")
	t.Setenv("TENDBOT_MQTT_PASSWORD", "testpass")
	t.Setenv("TENDBOT_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("TENDBOT_DEVICES_BACKEND", "sim")
	t.Setenv("TENDBOT_MACHINE_READY", "true")
	t.Setenv("TENDBOT_MACHINE_SPEED", "slow")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Devices.Backend != BackendSim {
		t.Errorf("Devices.Backend = %q, want %q", cfg.Devices.Backend, BackendSim)
	}
	if !cfg.Machine.Ready {
		t.Error("Machine.Ready = false, want true")
	}
	if cfg.Machine.Speed != SpeedSlow {
		t.Errorf("Machine.Speed = %q, want %q", cfg.Machine.Speed, SpeedSlow)
	}
}

func TestApplyEnvOverrides_InvalidReadyIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("TENDBOT_MACHINE_READY", "maybe")

	applyEnvOverrides(cfg)

	if cfg.Machine.Ready {
		t.Error("Machine.Ready = true, want unchanged false")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Machine.Ready {
		t.Error("defaultConfig should not be ready")
	}
	if cfg.Devices.Backend != BackendRPIO {
		t.Errorf("defaultConfig Devices.Backend = %q, want %q", cfg.Devices.Backend, BackendRPIO)
	}
	if cfg.Machine.Speed != SpeedNormal {
		t.Errorf("defaultConfig Machine.Speed = %q, want %q", cfg.Machine.Speed, SpeedNormal)
	}
	if cfg.TendingDutyCycle() == 0 {
		t.Error("defaultConfig should have a non-zero tending duty")
	}
}

func TestMechanismsConfig_Lookup(t *testing.T) {
	m := defaultConfig().Mechanisms

	for _, name := range m.Names() {
		mech, err := m.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", name, err)
		}
		for _, speed := range Speeds {
			p, err := mech.Speed.Profile(speed)
			if err != nil {
				t.Fatalf("Profile(%q) error = %v", speed, err)
			}
			if p.X.RPM <= 0 {
				t.Errorf("%s %s x rpm = %v, want positive", name, speed, p.X.RPM)
			}
		}
	}

	if _, err := m.Lookup("polishing"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Lookup(polishing) error = %v, want ErrMissingKey", err)
	}
	if _, err := m.Spraying.Speed.Profile("warp"); err == nil {
		t.Error("Profile(warp) should fail")
	}
	if _, ok := (SpeedProfile{}).Axis("w"); ok {
		t.Error("Axis(w) should not resolve")
	}
}
