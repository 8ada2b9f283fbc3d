package program

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// programFile is the YAML schema of a program definition:
//
//	type: resistance        # current | power | resistance
//	run: repeat             # once | repeat, defaults to once
//	steps:
//	  - setting: 500        # physical units of the program type
//	    duration: 10        # seconds
//	  - setting: 250
//	    duration: 10
type programFile struct {
	Type  string     `yaml:"type"`
	Run   string     `yaml:"run"`
	Steps []fileStep `yaml:"steps"`
}

type fileStep struct {
	Setting  float64 `yaml:"setting"`
	Duration int     `yaml:"duration"`
}

// ParseFile reads a YAML program definition from the given path.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Parse reads a YAML program definition from any io.Reader. Every
// model validation applies: unknown types and modes, out-of-range
// settings and durations, and more than ten steps all fail, naming the
// offending step where there is one.
func Parse(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	var file programFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid program YAML: %w", err)
	}

	progType, err := parseType(file.Type)
	if err != nil {
		return nil, err
	}
	runMode, err := parseRunMode(file.Run)
	if err != nil {
		return nil, err
	}

	prog, err := New(progType, runMode)
	if err != nil {
		return nil, err
	}
	for i, step := range file.Steps {
		if err := prog.AddStep(step.Setting, step.Duration); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return prog, nil
}

func parseType(s string) (Type, error) {
	switch s {
	case "current":
		return TypeCurrent, nil
	case "power":
		return TypePower, nil
	case "resistance":
		return TypeResistance, nil
	case "":
		return 0, fmt.Errorf("program type is required (current, power or resistance)")
	default:
		return 0, fmt.Errorf("unknown program type %q (want current, power or resistance)", s)
	}
}

func parseRunMode(s string) (RunMode, error) {
	switch s {
	case "", "once":
		return RunOnce, nil
	case "repeat":
		return RunRepeat, nil
	default:
		return 0, fmt.Errorf("unknown run mode %q (want once or repeat)", s)
	}
}
