package device

// ID identifies one line or channel within a registry kind.
type ID string

// Pi -> PLC handshake outputs.
const (
	SprayingReady    ID = "spraying-ready"
	SprayingRunning  ID = "spraying-running"
	SprayingComplete ID = "spraying-complete"
	TendingReady     ID = "tending-ready"
	TendingRunning   ID = "tending-running"
	TendingComplete  ID = "tending-complete"
)

// Actuators.
const (
	Spray  ID = "spray"  // solenoid valve, digital output
	Finger ID = "finger" // finger mechanism, PWM
)

// PLC -> Pi inputs.
const (
	SprayingHeight ID = "spraying-height"
	TendingHeight  ID = "tending-height"
	Reset          ID = "reset"
	EStop          ID = "e-stop"
	Anomaly        ID = "anomaly"
)

// Limit switches.
const (
	LimitX  ID = "limit-x"
	LimitY  ID = "limit-y"
	LimitZ1 ID = "limit-z1"
	LimitZ2 ID = "limit-z2"
)

// Steppers and the analog converter.
const (
	AxisX ID = "x"
	AxisY ID = "y"
	AxisZ ID = "z"

	ADC ID = "pcf8591"
)

// PiToPLC lists the handshake outputs in bring-up order.
var PiToPLC = []ID{
	TendingReady, SprayingReady,
	TendingRunning, SprayingRunning,
	TendingComplete, SprayingComplete,
}

// PLCToPi lists the PLC inputs in bring-up order.
var PLCToPi = []ID{SprayingHeight, TendingHeight, Reset, EStop}
