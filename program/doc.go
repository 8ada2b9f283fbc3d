// Package program models the multi-step test sequences an Array 3710A
// load stores and runs on its own.
//
// A Program holds up to ten (setting, duration) steps of a single type:
// constant current, constant power or constant resistance. The type is
// fixed at construction because it determines the valid setting range
// of every step (30 A, 200 W or 500 ohms).
//
//	prog, err := program.New(program.TypeResistance, program.RunRepeat)
//	err = prog.AddStep(500, 10) // 500 ohms for 10 seconds
//	err = prog.AddStep(250, 10)
//
// Programs can also be loaded from YAML files:
//
//	prog, err := program.ParseFile("ramp.yaml")
//
// Upload a populated program with Load.SetProgramSequence. The device
// protocol splits the upload across two frames of five step slots
// each; HalfPayload produces those slots with zero padding so partial
// programs encode deterministically.
package program
