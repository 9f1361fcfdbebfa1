package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tendbot/tendbot-core/internal/device"
	"github.com/tendbot/tendbot-core/internal/gpio"
	"github.com/tendbot/tendbot-core/internal/infrastructure/config"
)

// checkConfig loads and validates the config, resolves every device key
// by bringing the devices up on a simulated chip, and prints the map.
// No hardware is touched whatever the configured backend.
func checkConfig(w io.Writer, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	set, err := device.Bringup(cfg.Devices, gpio.NewSimChip(), nil)
	if err != nil {
		return err
	}
	defer set.Close() //nolint:errcheck // simulated chip

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "site\t%s\n", cfg.Site.ID)
	fmt.Fprintf(tw, "backend\t%s\n", cfg.Devices.Backend)
	fmt.Fprintf(tw, "ready\t%t\n", cfg.Machine.Ready)
	fmt.Fprintf(tw, "speed\t%s\n", cfg.Machine.Speed)
	fmt.Fprintf(tw, "tending duty\t%d/%d\n\n", cfg.TendingDutyCycle(), cfg.Devices.FingerPWM.Range)

	fmt.Fprintln(tw, "MECHANISM\tAXIS\tRPM\tACCEL/DECEL")
	for _, name := range cfg.Mechanisms.Names() {
		p, err := cfg.SpeedProfile(name)
		if err != nil {
			return err
		}
		for _, axis := range []string{"x", "y", "z"} {
			a, _ := p.Axis(axis)
			fmt.Fprintf(tw, "%s\t%s\t%g\t%g/%g\n", name, axis, a.RPM, a.Acceleration, a.Deceleration)
		}
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "KIND\tID\tPIN\tACTIVE")
	for _, id := range set.DigitalInputs().IDs() {
		in := set.DigitalInputs().Get(id)
		fmt.Fprintf(tw, "input\t%s\t%d\t%s\n", id, in.Pin(), activeLevel(in.ActiveHigh()))
	}
	for _, id := range set.DigitalOutputs().IDs() {
		out := set.DigitalOutputs().Get(id)
		fmt.Fprintf(tw, "output\t%s\t%d\t%s\n", id, out.Pin(), activeLevel(out.ActiveHigh()))
	}
	for _, id := range set.PWMs().IDs() {
		p := set.PWMs().Get(id)
		fmt.Fprintf(tw, "pwm\t%s\t%d\trange %d\n", id, p.Pin(), p.Range())
	}
	for _, id := range set.Steppers().IDs() {
		s := set.Steppers().Get(id).Settings()
		fmt.Fprintf(tw, "stepper\t%s\t%d/%d/%d\t%d microsteps\n", id, s.StepPin, s.DirPin, s.EnablePin, s.Microsteps)
	}
	for _, id := range set.Analogs().IDs() {
		fmt.Fprintf(tw, "analog\t%s\tbus %d\t%#x\n", id, cfg.Devices.Analog.Bus, set.Analogs().Get(id).Address())
	}
	return tw.Flush()
}

func activeLevel(high bool) string {
	if high {
		return "high"
	}
	return "low"
}
