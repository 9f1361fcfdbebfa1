package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func TestLinesLookup(t *testing.T) {
	lines := Lines{
		"tending-ready": {Pin: intPtr(0), ActiveState: boolPtr(false)},
		"no-pin":        {ActiveState: boolPtr(true)},
		"no-state":      {Pin: intPtr(3)},
	}

	tests := []struct {
		name     string
		line     string
		want     Line
		wantPath string
	}{
		{name: "present", line: "tending-ready", want: Line{Pin: 0, ActiveHigh: false}},
		{name: "absent", line: "tending-running", wantPath: "devices.pi_to_plc.tending-running"},
		{name: "pin missing", line: "no-pin", wantPath: "devices.pi_to_plc.no-pin.pin"},
		{name: "active state missing", line: "no-state", wantPath: "devices.pi_to_plc.no-state.active_state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lines.Lookup("pi_to_plc", tt.line)
			if tt.wantPath == "" {
				if err != nil {
					t.Fatalf("Lookup() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("Lookup() = %+v, want %+v", got, tt.want)
				}
				return
			}
			if !errors.Is(err, ErrMissingKey) {
				t.Fatalf("Lookup() error = %v, want ErrMissingKey", err)
			}
			if !strings.HasSuffix(err.Error(), tt.wantPath) {
				t.Errorf("Lookup() error = %q, want key path %q", err, tt.wantPath)
			}
		})
	}
}

func TestLineConfigResolve_Nil(t *testing.T) {
	var lc *LineConfig
	if _, err := lc.Resolve("devices.spray"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Resolve() on nil error = %v, want ErrMissingKey", err)
	}
}

func TestLinesNames_Sorted(t *testing.T) {
	lines := Lines{"z2": {}, "x": {}, "z1": {}, "y": {}}
	want := []string{"x", "y", "z1", "z2"}
	if got := lines.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestLookupStepper(t *testing.T) {
	d := DevicesConfig{
		Stepper: map[string]StepperConfig{
			"x": {
				StepPin: intPtr(23), DirPin: intPtr(24), EnablePin: intPtr(25),
				Microsteps: 8, RPM: 60,
				StepActiveState: boolPtr(true), DirActiveState: boolPtr(true), EnableActiveState: boolPtr(false),
			},
			"y": {StepPin: intPtr(1), EnablePin: intPtr(2)},
		},
	}

	x, err := d.LookupStepper("x")
	if err != nil {
		t.Fatalf("LookupStepper(x) error = %v", err)
	}
	if x.StepPin != 23 || x.DirPin != 24 || x.EnablePin != 25 || x.Microsteps != 8 ||
		!x.StepActiveState || !x.DirActiveState || x.EnableActiveState {
		t.Errorf("LookupStepper(x) = %+v", x)
	}

	if _, err := d.LookupStepper("y"); err == nil || !strings.Contains(err.Error(), "devices.stepper.y.dir_pin") {
		t.Errorf("LookupStepper(y) error = %v, want missing dir_pin", err)
	}
	if _, err := d.LookupStepper("z"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("LookupStepper(z) error = %v, want ErrMissingKey", err)
	}
}

func TestLookupStepper_MissingActiveState(t *testing.T) {
	full := func() StepperConfig {
		return StepperConfig{
			StepPin: intPtr(23), DirPin: intPtr(24), EnablePin: intPtr(25),
			Microsteps: 16, RPM: 60,
			StepActiveState: boolPtr(true), DirActiveState: boolPtr(true), EnableActiveState: boolPtr(false),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*StepperConfig)
		wantKey string
	}{
		{"step", func(sc *StepperConfig) { sc.StepActiveState = nil }, "devices.stepper.x.step_active_state"},
		{"dir", func(sc *StepperConfig) { sc.DirActiveState = nil }, "devices.stepper.x.dir_active_state"},
		{"enable", func(sc *StepperConfig) { sc.EnableActiveState = nil }, "devices.stepper.x.enable_active_state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := full()
			tt.mutate(&sc)
			d := DevicesConfig{Stepper: map[string]StepperConfig{"x": sc}}

			_, err := d.LookupStepper("x")
			if !errors.Is(err, ErrMissingKey) {
				t.Fatalf("LookupStepper(x) error = %v, want ErrMissingKey", err)
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("LookupStepper(x) error = %v, want mention of %q", err, tt.wantKey)
			}
		})
	}
}
