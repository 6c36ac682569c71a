package fill

import (
	"testing"

	"nx/hw"
	"nx/hw/input"
)

func TestFillFrame(t *testing.T) {
	core, err := hw.Init(hw.Config{
		CyclesPerFrame:    1000,
		FramebufferWidth:  8,
		FramebufferHeight: 6,
	}, New(8, 6))
	if err != nil {
		t.Fatal(err)
	}

	res, err := core.AdvanceFrame(input.Latch{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.BoundaryReached || res.CyclesConsumed != 6 {
		t.Errorf("result = %+v, want boundary after 6 cycles", res)
	}

	front := core.Front()
	for y := range front.Height() {
		for x := range front.Width() {
			if got := front.Pixel(x, y); got != DefaultColor {
				t.Fatalf("pixel (%d,%d) = %08X, want %08X", x, y, got, DefaultColor)
			}
		}
	}
}

func TestFillBudget(t *testing.T) {
	u := New(4, 10)
	u.RowCycles = 3
	core, err := hw.Init(hw.Config{
		CyclesPerFrame:    12,
		FramebufferWidth:  4,
		FramebufferHeight: 10,
	}, u)
	if err != nil {
		t.Fatal(err)
	}

	// 4 rows per frame, the screen is complete after the third frame.
	for i, want := range []bool{false, false, true} {
		res, err := core.AdvanceFrame(input.Latch{})
		if err != nil {
			t.Fatal(err)
		}
		if res.BoundaryReached != want {
			t.Errorf("frame %d: boundary = %t, want %t", i, res.BoundaryReached, want)
		}
	}
	if got := core.Front().Pixel(3, 9); got != DefaultColor {
		t.Errorf("last pixel = %08X, want %08X", got, DefaultColor)
	}
}

func TestFillClone(t *testing.T) {
	u := New(2, 3)
	var out hw.StepOutcome
	if err := u.Step(input.Latch{}, &out); err != nil {
		t.Fatal(err)
	}
	c := u.Clone().(*Unit)
	if c.row != 1 {
		t.Fatalf("clone row = %d, want 1", c.row)
	}
	c.Reset()
	if u.row != 1 {
		t.Errorf("resetting the clone modified the original")
	}
}
