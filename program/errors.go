package program

import "fmt"

// CapacityError indicates an attempt to add a step to a full program.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("program is full: maximum of %d steps are allowed", e.Limit)
}

// StepIndexError indicates a step position outside the stored range.
type StepIndexError struct {
	Index int
	Len   int
}

func (e *StepIndexError) Error() string {
	return fmt.Sprintf("step position %d out of range for program with %d steps", e.Index, e.Len)
}
