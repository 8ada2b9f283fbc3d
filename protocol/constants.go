package protocol

// Frame structure constants. Every exchange with the load is a fixed
// 26-byte frame in both directions.
const (
	// SyncByte is the frame start marker (0xAA)
	SyncByte = 0xAA

	// FrameLength is the fixed frame size in bytes:
	// SYNC(1) + ADDRESS(1) + CMD(1) + PAYLOAD(22) + CHECKSUM(1)
	FrameLength = 26

	// PayloadOffset is the frame offset of the first payload byte
	PayloadOffset = 3

	// ChecksumOffset is the frame offset of the checksum byte
	ChecksumOffset = 25
)

// Command codes. All commands are write-only on the wire except
// CmdReadValues, which is answered with a 26-byte status frame.
const (
	// CmdSetParameters applies max current, max power, address, load mode and setpoint
	CmdSetParameters = 0x90

	// CmdReadValues requests a measurement/status report
	CmdReadValues = 0x91

	// CmdLoadState switches remote control and load-on flags
	CmdLoadState = 0x92

	// CmdDefineProgramLow uploads program steps 1-5 plus type and step count
	CmdDefineProgramLow = 0x93

	// CmdDefineProgramHigh uploads program steps 6-10 plus the run mode
	CmdDefineProgramHigh = 0x94

	// CmdStartProgram starts the stored program sequence
	CmdStartProgram = 0x95

	// CmdStopProgram stops the running program sequence
	CmdStopProgram = 0x96
)

// Load mode codes. Selects which quantity the load regulates; also used
// as the program type in CmdDefineProgramLow.
const (
	// ModeCurrent regulates constant current
	ModeCurrent = 0x01

	// ModePower regulates constant power
	ModePower = 0x02

	// ModeResistance regulates constant resistance
	ModeResistance = 0x03
)

// Program run mode codes, sent in CmdDefineProgramHigh.
const (
	// RunModeOnce runs the program sequence a single time
	RunModeOnce = 0x00

	// RunModeRepeat repeats the program sequence until stopped
	RunModeRepeat = 0x01
)

// Status flag bits of the Read Values response (frame offset 17).
const (
	// FlagRemoteControl is set while the load accepts serial commands
	FlagRemoteControl StatusFlags = 0x01

	// FlagLoadOn is set while the load is sinking current
	FlagLoadOn StatusFlags = 0x02

	// FlagWrongPolarity reports a reversed input connection
	FlagWrongPolarity StatusFlags = 0x04

	// FlagExcessiveTemp reports an over-temperature condition
	FlagExcessiveTemp StatusFlags = 0x08

	// FlagExcessiveVoltage reports an input over-voltage condition
	FlagExcessiveVoltage StatusFlags = 0x10

	// FlagExcessivePower reports an over-power condition
	FlagExcessivePower StatusFlags = 0x20
)

// Load State command flag bits (frame offset 3 of CmdLoadState).
// The bit order is reversed from the status flags the device reports:
// here load-on is bit 0 and remote control is bit 1.
const (
	// LoadStateLoadOn turns the load input on
	LoadStateLoadOn = 0x01

	// LoadStateRemoteControl enables remote control, locking the front panel
	LoadStateRemoteControl = 0x02
)

// Device unit scales. Wire values are integers in the device's native
// units; dividing by the scale yields the physical quantity.
const (
	// CurrentScale converts milliamps to amps (1000 mA per A)
	CurrentScale = 1000

	// PowerScale converts tenths of a watt to watts (10 per W)
	PowerScale = 10

	// ResistanceScale converts hundredths of an ohm to ohms (100 per ohm)
	ResistanceScale = 100

	// VoltageScale converts millivolts to volts (1000 mV per V)
	VoltageScale = 1000
)

// Device unit limits for settable values.
const (
	// MaxCurrentRaw is the largest current setting in milliamps (30 A)
	MaxCurrentRaw = 30000

	// MaxPowerRaw is the largest power setting in tenths of a watt (200 W)
	MaxPowerRaw = 2000

	// MaxResistanceRaw is the largest resistance setting in hundredths of an ohm (500 ohms)
	MaxResistanceRaw = 50000
)

// Program limits.
const (
	// MaxProgramSteps is the most steps a program sequence can hold
	MaxProgramSteps = 10

	// ProgramStepsPerFrame is the number of step slots in each define-program frame
	ProgramStepsPerFrame = 5

	// MinStepDuration is the shortest step duration in seconds
	MinStepDuration = 1

	// MaxStepDuration is the longest step duration in seconds
	MaxStepDuration = 60000
)
