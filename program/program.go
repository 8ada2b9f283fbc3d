package program

import (
	"fmt"

	"github.com/sacherjj/array-devices/protocol"
)

// Type selects which quantity a program regulates. It is fixed at
// construction because the valid setting range of every step depends
// on it.
type Type byte

// Program types, matching the load mode codes on the wire.
const (
	TypeCurrent    Type = protocol.ModeCurrent
	TypePower      Type = protocol.ModePower
	TypeResistance Type = protocol.ModeResistance
)

func (t Type) String() string {
	switch t {
	case TypeCurrent:
		return "current"
	case TypePower:
		return "power"
	case TypeResistance:
		return "resistance"
	default:
		return fmt.Sprintf("type(0x%02X)", byte(t))
	}
}

// RunMode selects whether the device runs the sequence once or loops
// it until stopped.
type RunMode byte

// Run modes, matching the codes on the wire.
const (
	RunOnce   RunMode = protocol.RunModeOnce
	RunRepeat RunMode = protocol.RunModeRepeat
)

func (m RunMode) String() string {
	switch m {
	case RunOnce:
		return "once"
	case RunRepeat:
		return "repeat"
	default:
		return fmt.Sprintf("mode(0x%02X)", byte(m))
	}
}

// Step is one (setpoint, duration) pair of a program. The program type
// is stored in the step itself so a step can report its physical
// setting without reaching back to its program.
type Step struct {
	progType Type
	setting  uint16 // device units of progType
	duration uint16 // seconds
}

// Setting returns the step setpoint in the physical units of the
// program type: amps, watts or ohms.
func (s Step) Setting() float64 {
	return protocol.PhysicalSetting(byte(s.progType), s.setting)
}

// Duration returns the step length in seconds.
func (s Step) Duration() int {
	return int(s.duration)
}

// Program is an ordered sequence of up to ten steps that the load
// stores and executes autonomously. Build one with New and AddStep,
// then upload it with Load.SetProgramSequence. The device keeps its
// own copy; changing the Program afterwards has no effect until the
// next upload.
type Program struct {
	progType Type
	runMode  RunMode
	steps    []Step
}

// New creates an empty program of the given type and run mode.
func New(progType Type, runMode RunMode) (*Program, error) {
	if _, err := protocol.DeviceSetting(byte(progType), 0); err != nil {
		return nil, err
	}
	p := &Program{progType: progType}
	if err := p.SetRunMode(runMode); err != nil {
		return nil, err
	}
	return p, nil
}

// Type returns the program type. It cannot be changed after
// construction.
func (p *Program) Type() Type {
	return p.progType
}

// RunMode returns the configured run mode.
func (p *Program) RunMode() RunMode {
	return p.runMode
}

// SetRunMode changes the run mode.
func (p *Program) SetRunMode(mode RunMode) error {
	if mode != RunOnce && mode != RunRepeat {
		return fmt.Errorf("invalid run mode 0x%02X: valid modes are 0x00 (once), 0x01 (repeat)", byte(mode))
	}
	p.runMode = mode
	return nil
}

// Len returns the number of stored steps.
func (p *Program) Len() int {
	return len(p.steps)
}

// AddStep appends a step with the given setting (in the physical units
// of the program type) and duration in seconds. Fails with a
// CapacityError once MaxProgramSteps steps are stored, and with a
// range error before anything is stored if the setting or duration is
// out of range.
func (p *Program) AddStep(setting float64, durationSeconds int) error {
	if len(p.steps) >= protocol.MaxProgramSteps {
		return &CapacityError{Limit: protocol.MaxProgramSteps}
	}
	raw, err := protocol.DeviceSetting(byte(p.progType), setting)
	if err != nil {
		return err
	}
	if durationSeconds < protocol.MinStepDuration || durationSeconds > protocol.MaxStepDuration {
		return &protocol.RangeError{
			Quantity: "step duration",
			Value:    float64(durationSeconds),
			Min:      protocol.MinStepDuration,
			Max:      protocol.MaxStepDuration,
			Unit:     "seconds",
		}
	}
	p.steps = append(p.steps, Step{
		progType: p.progType,
		setting:  raw,
		duration: uint16(durationSeconds),
	})
	return nil
}

// DeleteStep removes the step at pos. Negative positions count from
// the end, so DeleteStep(-1) removes the last step. Fails with a
// StepIndexError when pos is out of range, including any delete on an
// empty program.
func (p *Program) DeleteStep(pos int) error {
	idx := pos
	if idx < 0 {
		idx += len(p.steps)
	}
	if idx < 0 || idx >= len(p.steps) {
		return &StepIndexError{Index: pos, Len: len(p.steps)}
	}
	p.steps = append(p.steps[:idx], p.steps[idx+1:]...)
	return nil
}

// Steps returns the stored steps in execution order. The slice is a
// copy; mutating it does not affect the program.
func (p *Program) Steps() []Step {
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// HalfPayload returns the five device-unit step slots starting at
// start, which is 0 for the first define-program frame and 5 for the
// second. Slots past the stored step count are zero pairs, so both
// frames are always fully populated no matter how many steps exist.
func (p *Program) HalfPayload(start int) [protocol.ProgramStepsPerFrame]protocol.StepData {
	var half [protocol.ProgramStepsPerFrame]protocol.StepData
	for i := range half {
		idx := start + i
		if idx < 0 || idx >= len(p.steps) {
			continue
		}
		half[i] = protocol.StepData{
			Setting:  p.steps[idx].setting,
			Duration: p.steps[idx].duration,
		}
	}
	return half
}
