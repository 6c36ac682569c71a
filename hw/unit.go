package hw

import "nx/hw/input"

// A PixelWrite is a pixel emitted by a step, to be written in the back buffer.
type PixelWrite struct {
	X, Y  uint32
	Color Color
}

// StepOutcome is what an execution unit reports for one step. The core
// clears it before each call to Step, so units only have to fill it.
type StepOutcome struct {
	Cycles   uint32       // cost of the step, must be > 0
	Writes   []PixelWrite // pixels to write, in order
	Boundary bool         // the step ends the frame (video sync)
}

// Plot appends a pixel write to the outcome.
func (o *StepOutcome) Plot(x, y uint32, c Color) {
	o.Writes = append(o.Writes, PixelWrite{X: x, Y: y, Color: c})
}

func (o *StepOutcome) clear() {
	o.Cycles = 0
	o.Writes = o.Writes[:0]
	o.Boundary = false
}

// A Unit is an execution unit: the machine specific state (registers,
// memory, peripherals) advanced one indivisible step at a time by the core.
//
// Step must be deterministic: from the same state and latch it always reports
// the same outcome and reaches the same state. A step returning an error must
// leave the unit state untouched.
type Unit interface {
	Step(in input.Latch, out *StepOutcome) error

	// Reset puts the unit back at its power-on state.
	Reset()
}

// A Cloner is a unit that can be duplicated, including its whole state.
// The clone shares nothing with the original.
type Cloner interface {
	Clone() Unit
}
