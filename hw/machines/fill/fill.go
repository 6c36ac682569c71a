// Package fill implements the simplest execution unit: it paints the whole
// screen with a constant color, one row per step, and signals the frame
// boundary after the last row.
package fill

import (
	"nx/hw"
	"nx/hw/input"
)

// DefaultColor is the color the original Nx Emulator shell filled its
// window with.
const DefaultColor hw.Color = 0xFF302010

// Unit fills a Width x Height screen with Color.
type Unit struct {
	Width, Height uint32
	Color         hw.Color

	// RowCycles is the cost of a row (default 1).
	RowCycles uint32

	row uint32
}

func New(width, height uint32) *Unit {
	return &Unit{
		Width:     width,
		Height:    height,
		Color:     DefaultColor,
		RowCycles: 1,
	}
}

func (u *Unit) Step(_ input.Latch, out *hw.StepOutcome) error {
	if u.Height == 0 {
		return hw.Fault(hw.FaultInternal, 0, "empty screen")
	}
	for x := range u.Width {
		out.Plot(x, u.row, u.Color)
	}
	out.Cycles = max(u.RowCycles, 1)

	u.row++
	if u.row == u.Height {
		u.row = 0
		out.Boundary = true
	}
	return nil
}

func (u *Unit) Reset() { u.row = 0 }

func (u *Unit) Clone() hw.Unit {
	c := *u
	return &c
}
