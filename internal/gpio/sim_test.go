package gpio

import (
	"errors"
	"testing"
)

func openSim(t *testing.T) *SimChip {
	t.Helper()
	chip := NewSimChip()
	if err := chip.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return chip
}

func TestSimChip_RequiresOpen(t *testing.T) {
	chip := NewSimChip()

	if err := chip.SetupOutput(17, PullOff); !errors.Is(err, ErrNotOpen) {
		t.Errorf("SetupOutput() before Open error = %v, want ErrNotOpen", err)
	}
	if _, err := chip.OpenI2C(1, 0x48); !errors.Is(err, ErrNotOpen) {
		t.Errorf("OpenI2C() before Open error = %v, want ErrNotOpen", err)
	}
}

func TestSimChip_OutputWrite(t *testing.T) {
	chip := openSim(t)

	if err := chip.SetupOutput(17, PullUp); err != nil {
		t.Fatalf("SetupOutput() error = %v", err)
	}
	if err := chip.Write(17, true); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !chip.Level(17) {
		t.Error("Level(17) = false, want true")
	}
	if chip.PullOf(17) != PullUp {
		t.Errorf("PullOf(17) = %v, want up", chip.PullOf(17))
	}

	writes := chip.Writes()
	if len(writes) != 1 || writes[0] != (SimWrite{Pin: 17, High: true}) {
		t.Errorf("Writes() = %+v", writes)
	}
}

func TestSimChip_WriteRequiresOutputMode(t *testing.T) {
	chip := openSim(t)

	if err := chip.SetupInput(5, PullOff); err != nil {
		t.Fatalf("SetupInput() error = %v", err)
	}
	if err := chip.Write(5, true); !errors.Is(err, ErrWrongMode) {
		t.Errorf("Write() on input error = %v, want ErrWrongMode", err)
	}
	if err := chip.Write(6, true); !errors.Is(err, ErrWrongMode) {
		t.Errorf("Write() on unconfigured pin error = %v, want ErrWrongMode", err)
	}
}

func TestSimChip_PulledUpInputIdlesHigh(t *testing.T) {
	chip := openSim(t)

	if err := chip.SetupInput(22, PullUp); err != nil {
		t.Fatalf("SetupInput() error = %v", err)
	}
	high, err := chip.Read(22)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !high {
		t.Error("pulled-up input should idle high")
	}

	chip.SetInput(22, false)
	high, _ = chip.Read(22)
	if high {
		t.Error("Read() after SetInput(false) = true")
	}
}

func TestSimChip_InvalidPin(t *testing.T) {
	chip := openSim(t)

	for _, pin := range []int{-1, 28, 100} {
		if err := chip.SetupOutput(pin, PullOff); !errors.Is(err, ErrInvalidPin) {
			t.Errorf("SetupOutput(%d) error = %v, want ErrInvalidPin", pin, err)
		}
	}
}

func TestSimChip_PWM(t *testing.T) {
	chip := openSim(t)

	if err := chip.SetupPWM(17, 1000); !errors.Is(err, ErrNoHardwarePWM) {
		t.Errorf("SetupPWM(17) error = %v, want ErrNoHardwarePWM", err)
	}
	if err := chip.SetupPWM(18, 1000); err != nil {
		t.Fatalf("SetupPWM(18) error = %v", err)
	}
	if err := chip.SetDutyCycle(18, 64, 255); err != nil {
		t.Fatalf("SetDutyCycle() error = %v", err)
	}
	duty, cycle := chip.Duty(18)
	if duty != 64 || cycle != 255 {
		t.Errorf("Duty() = %d/%d, want 64/255", duty, cycle)
	}
	if err := chip.SetDutyCycle(18, 300, 255); !errors.Is(err, ErrInvalidDutyCycle) {
		t.Errorf("SetDutyCycle(300/255) error = %v, want ErrInvalidDutyCycle", err)
	}
}

func TestSimChip_FailPin(t *testing.T) {
	chip := openSim(t)
	boom := errors.New("bus fault")

	if err := chip.SetupOutput(17, PullOff); err != nil {
		t.Fatalf("SetupOutput() error = %v", err)
	}
	chip.FailPin(17, boom)
	if err := chip.Write(17, true); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want injected fault", err)
	}

	chip.FailPin(17, nil)
	if err := chip.Write(17, true); err != nil {
		t.Errorf("Write() after clearing fault error = %v", err)
	}
}

func TestSimChip_FailOpen(t *testing.T) {
	chip := NewSimChip()
	boom := errors.New("no /dev/gpiomem")
	chip.FailOpen(boom)

	if err := chip.Open(); !errors.Is(err, boom) {
		t.Errorf("Open() error = %v, want injected fault", err)
	}
	if chip.IsOpen() {
		t.Error("IsOpen() = true after failed Open")
	}
}

func TestSimI2CBus(t *testing.T) {
	chip := openSim(t)

	bus, err := chip.OpenI2C(1, 0x48)
	if err != nil {
		t.Fatalf("OpenI2C() error = %v", err)
	}
	if err := bus.Write([]byte{0x41, 0x10}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	sim := chip.Bus(1, 0x48)
	if sim == nil {
		t.Fatal("Bus(1, 0x48) = nil")
	}
	if got := sim.Written(); len(got) != 1 || got[0][0] != 0x41 || got[0][1] != 0x10 {
		t.Errorf("Written() = %v", got)
	}

	if _, err := bus.ReadByte(); !errors.Is(err, ErrI2CFailed) {
		t.Errorf("ReadByte() with empty queue error = %v, want ErrI2CFailed", err)
	}
	sim.QueueRead(0x7f)
	v, err := bus.ReadByte()
	if err != nil || v != 0x7f {
		t.Errorf("ReadByte() = %#x, %v; want 0x7f, nil", v, err)
	}
}
