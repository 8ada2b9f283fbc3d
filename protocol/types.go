package protocol

// Status holds the decoded fields of a Read Values response. All values
// are in device units; use the scale constants or ToPhysical to convert.
type Status struct {
	// Current is the measured current in milliamps
	Current uint16

	// Voltage is the measured voltage in millivolts
	Voltage uint32

	// Power is the measured power in tenths of a watt
	Power uint16

	// MaxCurrent is the configured current limit in milliamps
	MaxCurrent uint16

	// MaxPower is the configured power limit in tenths of a watt
	MaxPower uint16

	// Resistance is the measured resistance in hundredths of an ohm
	Resistance uint16

	// Flags is the device status bitmask
	Flags StatusFlags
}

// StatusFlags is the status bitmask reported at frame offset 17 of a
// Read Values response.
type StatusFlags byte

// RemoteControl reports whether the load is under remote control.
func (f StatusFlags) RemoteControl() bool { return f&FlagRemoteControl != 0 }

// LoadOn reports whether the load input is on.
func (f StatusFlags) LoadOn() bool { return f&FlagLoadOn != 0 }

// WrongPolarity reports a reversed input connection.
func (f StatusFlags) WrongPolarity() bool { return f&FlagWrongPolarity != 0 }

// ExcessiveTemp reports an over-temperature condition.
func (f StatusFlags) ExcessiveTemp() bool { return f&FlagExcessiveTemp != 0 }

// ExcessiveVoltage reports an input over-voltage condition.
func (f StatusFlags) ExcessiveVoltage() bool { return f&FlagExcessiveVoltage != 0 }

// ExcessivePower reports an over-power condition.
func (f StatusFlags) ExcessivePower() bool { return f&FlagExcessivePower != 0 }

// StepData is one program step as it appears on the wire: a setting in
// the device units of the program type and a duration in seconds.
// Unused step slots are the zero value.
type StepData struct {
	// Setting is the step setpoint in device units
	Setting uint16

	// Duration is the step length in seconds
	Duration uint16
}
