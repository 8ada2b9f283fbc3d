package protocol

import "fmt"

// ChecksumError indicates that a received frame failed checksum
// validation. Expected is the checksum carried by the frame, Actual
// the value recomputed from the frame bytes.
type ChecksumError struct {
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: got 0x%02X, expected 0x%02X", e.Actual, e.Expected)
}

// FrameLengthError indicates a buffer that is not exactly FrameLength
// bytes.
type FrameLengthError struct {
	Length int
}

func (e *FrameLengthError) Error() string {
	return fmt.Sprintf("invalid frame length: got %d bytes, expected %d", e.Length, FrameLength)
}

// RangeError indicates a physical value outside the range the device
// accepts. It is returned before any state or buffer is touched.
type RangeError struct {
	// Quantity names the rejected value, e.g. "load current"
	Quantity string

	// Value is the rejected physical value
	Value float64

	// Min and Max are the valid bounds in physical units
	Min float64
	Max float64

	// Unit is the physical unit of the bounds
	Unit string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %g and %g %s, got %g",
		e.Quantity, e.Min, e.Max, e.Unit, e.Value)
}

// InvalidModeError indicates a load mode or program type byte outside
// the codes the device defines.
type InvalidModeError struct {
	Mode byte
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid load mode 0x%02X: valid modes are 0x01 (current), 0x02 (power), 0x03 (resistance)", e.Mode)
}
