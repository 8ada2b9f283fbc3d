package protocol

import (
	"encoding/binary"
	"fmt"
)

// StartFrame prepares a command frame in place: the payload and checksum
// bytes are zeroed and the three header bytes are written. The frame must
// be exactly FrameLength bytes.
//
// Frame structure:
//
//	[SYNC][ADDRESS][CMD][PAYLOAD(22)][CHECKSUM]
//
// Zero-filling the tail means a reused scratch buffer never leaks bytes
// from a previous command into the pad region.
func StartFrame(frame []byte, address, command byte) error {
	if len(frame) != FrameLength {
		return &FrameLengthError{Length: len(frame)}
	}
	for i := PayloadOffset; i < FrameLength; i++ {
		frame[i] = 0
	}
	frame[0] = SyncByte
	frame[1] = address
	frame[2] = command
	return nil
}

// BuildSetParametersCmd assembles a Set Parameters command in place,
// including the checksum. All values are in device units; use the
// Device* converters to produce them from physical values.
//
// Payload layout (absolute frame offsets):
//
//	[3:5]  max current (mA, little-endian)
//	[5:7]  max power (0.1 W)
//	[7]    device address
//	[8]    load mode
//	[9:11] load setpoint in the mode's device units
//	[11:25] pad
func BuildSetParametersCmd(frame []byte, address byte, maxCurrent, maxPower uint16, loadMode byte, loadValue uint16) error {
	if maxCurrent > MaxCurrentRaw {
		return fmt.Errorf("max current %d mA exceeds maximum %d", maxCurrent, MaxCurrentRaw)
	}
	if maxPower > MaxPowerRaw {
		return fmt.Errorf("max power %d exceeds maximum %d (0.1 W units)", maxPower, MaxPowerRaw)
	}
	_, maxRaw, _, err := modeLimits(loadMode)
	if err != nil {
		return err
	}
	if int(loadValue) > maxRaw {
		return fmt.Errorf("load value %d exceeds maximum %d for mode 0x%02X", loadValue, maxRaw, loadMode)
	}

	if err := StartFrame(frame, address, CmdSetParameters); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(frame[3:5], maxCurrent)
	binary.LittleEndian.PutUint16(frame[5:7], maxPower)
	frame[7] = address
	frame[8] = loadMode
	binary.LittleEndian.PutUint16(frame[9:11], loadValue)
	return WriteChecksum(frame)
}

// BuildReadValuesCmd assembles a Read Values command in place. The
// request carries no payload; the device answers with a 26-byte status
// frame (see ParseReadValuesResponse).
func BuildReadValuesCmd(frame []byte, address byte) error {
	if err := StartFrame(frame, address, CmdReadValues); err != nil {
		return err
	}
	return WriteChecksum(frame)
}

// BuildLoadStateCmd assembles a Load State command in place.
//
// Payload layout:
//
//	[3] flag byte: bit 0 load on, bit 1 remote control
//	[4:25] pad
//
// Note the bit order differs from the status byte the device reports.
func BuildLoadStateCmd(frame []byte, address byte, remoteControl, loadOn bool) error {
	if err := StartFrame(frame, address, CmdLoadState); err != nil {
		return err
	}
	var flags byte
	if loadOn {
		flags |= LoadStateLoadOn
	}
	if remoteControl {
		flags |= LoadStateRemoteControl
	}
	frame[PayloadOffset] = flags
	return WriteChecksum(frame)
}

// BuildDefineProgramLowCmd assembles the first define-program command
// (steps 1-5) in place. stepCount is the total number of steps in the
// program, 0 through MaxProgramSteps; steps holds the first five step
// slots in device units, zero-padded past the stored count.
//
// Payload layout:
//
//	[3]    program type
//	[4]    step count
//	[5:25] 5 x (u16 setting, u16 duration)
func BuildDefineProgramLowCmd(frame []byte, address byte, programType byte, stepCount int, steps [ProgramStepsPerFrame]StepData) error {
	if _, _, _, err := modeLimits(programType); err != nil {
		return err
	}
	if stepCount < 0 || stepCount > MaxProgramSteps {
		return fmt.Errorf("step count %d outside valid range 0-%d", stepCount, MaxProgramSteps)
	}
	if err := StartFrame(frame, address, CmdDefineProgramLow); err != nil {
		return err
	}
	frame[3] = programType
	frame[4] = byte(stepCount)
	writeSteps(frame[5:], steps)
	return WriteChecksum(frame)
}

// BuildDefineProgramHighCmd assembles the second define-program command
// (steps 6-10) in place. steps holds step slots six through ten in
// device units, zero-padded past the stored count.
//
// Payload layout:
//
//	[3:23] 5 x (u16 setting, u16 duration)
//	[23]   run mode
//	[24]   pad
func BuildDefineProgramHighCmd(frame []byte, address byte, steps [ProgramStepsPerFrame]StepData, runMode byte) error {
	if runMode != RunModeOnce && runMode != RunModeRepeat {
		return fmt.Errorf("invalid run mode 0x%02X: valid modes are 0x00 (once), 0x01 (repeat)", runMode)
	}
	if err := StartFrame(frame, address, CmdDefineProgramHigh); err != nil {
		return err
	}
	writeSteps(frame[3:], steps)
	frame[23] = runMode
	return WriteChecksum(frame)
}

// BuildStartProgramCmd assembles a Start Program command in place. The
// request carries no payload.
func BuildStartProgramCmd(frame []byte, address byte) error {
	if err := StartFrame(frame, address, CmdStartProgram); err != nil {
		return err
	}
	return WriteChecksum(frame)
}

// BuildStopProgramCmd assembles a Stop Program command in place. The
// request carries no payload.
func BuildStopProgramCmd(frame []byte, address byte) error {
	if err := StartFrame(frame, address, CmdStopProgram); err != nil {
		return err
	}
	return WriteChecksum(frame)
}

// writeSteps packs five (setting, duration) pairs little-endian starting
// at the front of dst.
func writeSteps(dst []byte, steps [ProgramStepsPerFrame]StepData) {
	for i, step := range steps {
		binary.LittleEndian.PutUint16(dst[i*4:], step.Setting)
		binary.LittleEndian.PutUint16(dst[i*4+2:], step.Duration)
	}
}
