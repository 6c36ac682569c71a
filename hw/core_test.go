package hw

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nx/hw/input"
)

// stubUnit is a programmable execution unit.
type stubUnit struct {
	cost uint32

	// Optional hooks, called with the 1-based step count since power-on.
	plot     func(n int, out *StepOutcome)
	fault    func(n int) error
	boundary func(n int) bool
	onStep   func(n int, in input.Latch)

	steps  int
	resets int
}

func (u *stubUnit) Step(in input.Latch, out *StepOutcome) error {
	n := u.steps + 1
	if u.fault != nil {
		if err := u.fault(n); err != nil {
			return err
		}
	}
	u.steps = n
	out.Cycles = u.cost
	if u.plot != nil {
		u.plot(n, out)
	}
	if u.boundary != nil {
		out.Boundary = u.boundary(n)
	}
	if u.onStep != nil {
		u.onStep(n, in)
	}
	return nil
}

func (u *stubUnit) Reset() {
	u.steps = 0
	u.resets++
}

func mustInit(tb testing.TB, cfg Config, unit Unit) *Core {
	tb.Helper()
	core, err := Init(cfg, unit)
	if err != nil {
		tb.Fatalf("Init(%+v) error: %v", cfg, err)
	}
	return core
}

func mustAdvance(tb testing.TB, core *Core, in input.Latch) FrameResult {
	tb.Helper()
	res, err := core.AdvanceFrame(in)
	if err != nil {
		tb.Fatalf("AdvanceFrame error: %v", err)
	}
	return res
}

// pixels returns a copy of the view pixels.
func pixels(v View) []Color {
	var pix []Color
	for y := range v.Height() {
		pix = append(pix, v.Row(y)...)
	}
	return pix
}

func TestAdvanceFrameSinglePixel(t *testing.T) {
	unit := &stubUnit{
		cost: 10,
		plot: func(_ int, out *StepOutcome) { out.Plot(0, 0, 0xFF000000) },
	}
	core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 4, FramebufferHeight: 4}, unit)

	res := mustAdvance(t, core, input.Latch{})

	want := FrameResult{Frame: 0, CyclesConsumed: 100}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("frame result mismatch (-want +got):\n%s", diff)
	}
	if unit.steps != 10 {
		t.Errorf("ran %d steps, want 10", unit.steps)
	}

	wantPix := make([]Color, 16)
	wantPix[0] = 0xFF000000
	if diff := cmp.Diff(wantPix, pixels(core.Front())); diff != "" {
		t.Errorf("front buffer mismatch (-want +got):\n%s", diff)
	}
}

func TestFaultKeepsLastFrame(t *testing.T) {
	unit := &stubUnit{cost: 10}
	unit.plot = func(n int, out *StepOutcome) {
		out.Plot(uint32(n%4), uint32(n/4%4), Color(0xFF000000|n))
	}
	core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 4, FramebufferHeight: 4}, unit)

	mustAdvance(t, core, input.Latch{})
	before := pixels(core.Front())

	// Fault on the 5th step of the second frame.
	unit.fault = func(n int) error {
		if n == 15 {
			return Fault(FaultIllegalOp, 0x42, "opcode $FF")
		}
		return nil
	}

	res, err := core.AdvanceFrame(input.Latch{})
	var fault *ExecutionFault
	if !errors.As(err, &fault) {
		t.Fatalf("AdvanceFrame error = %v, want an ExecutionFault", err)
	}
	if fault.Code != FaultIllegalOp || fault.Code.String() != "illegal-op" {
		t.Errorf("fault code = %v, want illegal-op", fault.Code)
	}
	if res.CyclesConsumed != 40 {
		t.Errorf("CyclesConsumed = %d, want 40 (4 completed steps)", res.CyclesConsumed)
	}
	if unit.steps != 14 {
		t.Errorf("unit ran %d steps, want 14", unit.steps)
	}
	if diff := cmp.Diff(before, pixels(core.Front())); diff != "" {
		t.Errorf("front buffer changed by a faulted frame (-want +got):\n%s", diff)
	}
	if !core.Halted() || core.Frames() != 1 {
		t.Errorf("Halted() = %t, Frames() = %d, want true, 1", core.Halted(), core.Frames())
	}

	// A halted core refuses to run and keeps reporting the fault.
	_, err = core.AdvanceFrame(input.Latch{})
	if !errors.Is(err, ErrHalted) || !errors.As(err, &fault) {
		t.Fatalf("AdvanceFrame on halted core = %v, want ErrHalted wrapping the fault", err)
	}
	if unit.steps != 14 {
		t.Errorf("halted core stepped the unit")
	}

	unit.fault = nil
	core.Reset()
	if core.Halted() {
		t.Fatalf("core still halted after reset")
	}
	mustAdvance(t, core, input.Latch{})
}

func TestReset(t *testing.T) {
	unit := &stubUnit{
		cost: 3,
		plot: func(_ int, out *StepOutcome) { out.Plot(1, 1, 0xFFFFFFFF) },
	}
	cfg := Config{CyclesPerFrame: 100, FramebufferWidth: 8, FramebufferHeight: 2}
	core := mustInit(t, cfg, unit)

	for range 5 {
		mustAdvance(t, core, input.Latch{})
	}
	if core.Cycles() == 0 || core.Balance() == 0 {
		t.Fatalf("expected cycles to run and a balance to be carried, got %d, %d", core.Cycles(), core.Balance())
	}

	core.Reset()

	if core.Cycles() != 0 || core.Frames() != 0 || core.Balance() != 0 || core.InFrame() {
		t.Errorf("after reset: cycles=%d frames=%d balance=%d inframe=%t, want zeros",
			core.Cycles(), core.Frames(), core.Balance(), core.InFrame())
	}
	if unit.steps != 0 || unit.resets != 2 { // Init + Reset
		t.Errorf("unit not reset: steps=%d resets=%d", unit.steps, unit.resets)
	}
	front := core.Front()
	if front.Width() != 8 || front.Height() != 2 {
		t.Errorf("framebuffer is %dx%d after reset, want 8x2", front.Width(), front.Height())
	}
	if diff := cmp.Diff(make([]Color, 16), pixels(front)); diff != "" {
		t.Errorf("framebuffer not cleared (-want +got):\n%s", diff)
	}

	res := mustAdvance(t, core, input.Latch{})
	if res.Frame != 0 || res.CyclesConsumed != 102 {
		t.Errorf("first frame after reset = %+v, want frame 0 with 102 cycles", res)
	}
}

func TestOvershootCarry(t *testing.T) {
	core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 1, FramebufferHeight: 1}, &stubUnit{cost: 30})

	var got []uint64
	var balances []int64
	for range 4 {
		res := mustAdvance(t, core, input.Latch{})
		got = append(got, res.CyclesConsumed)
		balances = append(balances, core.Balance())
	}

	if diff := cmp.Diff([]uint64{120, 90, 90, 120}, got); diff != "" {
		t.Errorf("cycles per frame mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{-20, -10, 0, -20}, balances); diff != "" {
		t.Errorf("balances mismatch (-want +got):\n%s", diff)
	}
}

func TestBudgetConservation(t *testing.T) {
	costs := []uint32{1, 7, 13, 40, 2, 99, 5, 64}

	for _, cpf := range []uint32{1, 50, 100, 1000, 29781} {
		t.Run(fmt.Sprint(cpf), func(t *testing.T) {
			unit := &stubUnit{}
			var maxCost uint32
			for _, c := range costs {
				maxCost = max(maxCost, c)
			}
			unit.plot = func(n int, out *StepOutcome) { out.Cycles = costs[n%len(costs)] }

			core := mustInit(t, Config{CyclesPerFrame: cpf, FramebufferWidth: 1, FramebufferHeight: 1}, unit)

			const nframes = 500
			var total uint64
			for range nframes {
				total += mustAdvance(t, core, input.Latch{}).CyclesConsumed
			}

			if total != core.Cycles() {
				t.Errorf("sum of CyclesConsumed = %d, Cycles() = %d", total, core.Cycles())
			}
			want := uint64(nframes) * uint64(cpf)
			if total < want || total > want+uint64(maxCost) {
				t.Errorf("consumed %d cycles over %d frames, want %d + at most %d", total, nframes, want, maxCost)
			}
		})
	}
}

func TestBoundarySignal(t *testing.T) {
	unit := &stubUnit{
		cost:     10,
		boundary: func(n int) bool { return n%3 == 0 },
	}
	core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 2, FramebufferHeight: 2}, unit)

	for i := range 3 {
		res := mustAdvance(t, core, input.Latch{})
		want := FrameResult{Frame: uint64(i), CyclesConsumed: 30, BoundaryReached: true}
		if diff := cmp.Diff(want, res); diff != "" {
			t.Errorf("frame %d result mismatch (-want +got):\n%s", i, diff)
		}
		if core.Balance() != 0 {
			t.Errorf("unused budget of a boundary frame was carried: balance=%d", core.Balance())
		}
	}
}

func TestSwapAtomicity(t *testing.T) {
	const w, h = 4, 4

	var core *Core
	frame := 0
	unit := &stubUnit{cost: 1}
	unit.plot = func(n int, out *StepOutcome) {
		idx := uint32((n - 1) % (w * h))
		out.Plot(idx%w, idx/w, Color(0xFF000000|frame))
		if idx == w*h-1 {
			out.Boundary = true
			frame++
		}
		if frame == 1 && idx == 5 {
			core.Stop()
		}
	}
	core = mustInit(t, Config{CyclesPerFrame: 1000, FramebufferWidth: w, FramebufferHeight: h}, unit)

	mustAdvance(t, core, input.Latch{})
	view := core.Front()
	first := pixels(view)
	for i, c := range first {
		if c != 0xFF000000 {
			t.Fatalf("pixel %d = %08X after first frame, want FF000000", i, c)
		}
	}

	// Second frame stops midway, after 6 pixels written in the back buffer.
	res, err := core.AdvanceFrame(input.Latch{})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("AdvanceFrame error = %v, want ErrStopped", err)
	}
	if res.CyclesConsumed != 6 || !core.InFrame() {
		t.Errorf("stopped frame: consumed %d cycles, in frame %t, want 6, true", res.CyclesConsumed, core.InFrame())
	}
	if diff := cmp.Diff(first, pixels(view)); diff != "" {
		t.Errorf("view taken before the frame changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, pixels(core.Front())); diff != "" {
		t.Errorf("front buffer shows a partial frame (-want +got):\n%s", diff)
	}

	// Resume: the frame completes with the remaining pixels.
	res = mustAdvance(t, core, input.Latch{})
	if res.CyclesConsumed != 10 || res.Frame != 1 {
		t.Errorf("resumed frame = %+v, want frame 1 with 10 cycles", res)
	}
	for i, c := range pixels(core.Front()) {
		if c != 0xFF000001 {
			t.Fatalf("pixel %d = %08X after second frame, want FF000001", i, c)
		}
	}
}

func TestInputStability(t *testing.T) {
	var core *Core
	var seen []input.Latch

	unit := &stubUnit{cost: 10}
	unit.onStep = func(n int, in input.Latch) {
		seen = append(seen, in)
		if n == 3 {
			core.Stop()
		}
	}
	core = mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 1, FramebufferHeight: 1}, unit)

	var host input.HostState
	host.Press(input.ButtonA, true)
	if _, err := core.AdvanceFrame(input.Capture(&host)); !errors.Is(err, ErrStopped) {
		t.Fatalf("AdvanceFrame error = %v, want ErrStopped", err)
	}

	// Host input changes before the frame is resumed.
	host.Press(input.ButtonA, false)
	host.Press(input.ButtonB, true)
	mustAdvance(t, core, input.Capture(&host))

	if len(seen) != 10 {
		t.Fatalf("unit ran %d steps, want 10", len(seen))
	}
	for i, l := range seen {
		if !l.Pressed(input.ButtonA) || l.Pressed(input.ButtonB) {
			t.Errorf("step %d observed latch %08b, want only A pressed", i, l.Buttons())
		}
	}

	// A new frame samples the new input.
	seen = seen[:0]
	mustAdvance(t, core, input.Capture(&host))
	for i, l := range seen {
		if l.Pressed(input.ButtonA) || !l.Pressed(input.ButtonB) {
			t.Errorf("step %d of next frame observed latch %08b, want only B pressed", i, l.Buttons())
		}
	}
}

func TestStopBeforeFrame(t *testing.T) {
	unit := &stubUnit{cost: 10}
	core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 1, FramebufferHeight: 1}, unit)

	core.Stop()
	res, err := core.AdvanceFrame(input.Latch{})
	if !errors.Is(err, ErrStopped) || res.CyclesConsumed != 0 || unit.steps != 0 {
		t.Fatalf("AdvanceFrame = %+v, %v; want no step and ErrStopped", res, err)
	}

	// The stop request is consumed.
	if res := mustAdvance(t, core, input.Latch{}); res.CyclesConsumed != 100 {
		t.Errorf("CyclesConsumed = %d, want 100", res.CyclesConsumed)
	}
}

func TestBoundsPolicy(t *testing.T) {
	plot := func(_ int, out *StepOutcome) {
		out.Plot(0, 0, 0xFF0000FF)
		out.Plot(9, 9, 0xFF00FF00)
	}

	t.Run("fail", func(t *testing.T) {
		unit := &stubUnit{cost: 50, plot: plot}
		core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 4, FramebufferHeight: 4}, unit)

		_, err := core.AdvanceFrame(input.Latch{})
		var oob *OutOfBoundsError
		if !errors.As(err, &oob) {
			t.Fatalf("AdvanceFrame error = %v, want OutOfBoundsError", err)
		}
		want := OutOfBoundsError{X: 9, Y: 9, Width: 4, Height: 4}
		if diff := cmp.Diff(want, *oob); diff != "" {
			t.Errorf("error mismatch (-want +got):\n%s", diff)
		}
		if !core.Halted() {
			t.Errorf("core should halt on out of bounds write")
		}
		// No write of the faulty step reached the back buffer.
		if core.fb.back[0] != 0 {
			t.Errorf("in bounds write of a rejected step was applied")
		}
		if got := core.Cycles(); got != 0 {
			t.Errorf("Cycles() = %d, rejected step should not be counted", got)
		}
	})

	t.Run("fail-later-step", func(t *testing.T) {
		unit := &stubUnit{cost: 30, plot: func(n int, out *StepOutcome) {
			if n == 3 {
				out.Plot(4, 0, 0xFFFFFFFF)
			}
		}}
		core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 4, FramebufferHeight: 4}, unit)

		res, err := core.AdvanceFrame(input.Latch{})
		var oob *OutOfBoundsError
		if !errors.As(err, &oob) {
			t.Fatalf("AdvanceFrame error = %v, want OutOfBoundsError", err)
		}
		if res.CyclesConsumed != 60 || core.Cycles() != 60 {
			t.Errorf("cycles = %d (result %d), want 60 for the 2 completed steps", core.Cycles(), res.CyclesConsumed)
		}
	})

	t.Run("ignore", func(t *testing.T) {
		unit := &stubUnit{cost: 50, plot: plot}
		core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 4, FramebufferHeight: 4, Bounds: BoundsIgnore}, unit)

		res := mustAdvance(t, core, input.Latch{})
		if res.DroppedWrites != 2 {
			t.Errorf("DroppedWrites = %d, want 2", res.DroppedWrites)
		}
		if got := core.Front().Pixel(0, 0); got != 0xFF0000FF {
			t.Errorf("pixel (0,0) = %08X, want FF0000FF", got)
		}
	})
}

func TestStepErrors(t *testing.T) {
	t.Run("zero-cost", func(t *testing.T) {
		core := mustInit(t, Config{CyclesPerFrame: 10, FramebufferWidth: 1, FramebufferHeight: 1}, &stubUnit{cost: 0})

		_, err := core.AdvanceFrame(input.Latch{})
		var fault *ExecutionFault
		if !errors.As(err, &fault) || fault.Code != FaultInternal {
			t.Fatalf("AdvanceFrame error = %v, want internal fault", err)
		}
	})

	t.Run("plain-error", func(t *testing.T) {
		unit := &stubUnit{cost: 1, fault: func(int) error { return errors.New("device on fire") }}
		core := mustInit(t, Config{CyclesPerFrame: 10, FramebufferWidth: 1, FramebufferHeight: 1}, unit)

		_, err := core.AdvanceFrame(input.Latch{})
		var fault *ExecutionFault
		if !errors.As(err, &fault) || fault.Code != FaultInternal || fault.Reason != "device on fire" {
			t.Fatalf("AdvanceFrame error = %v, want internal fault with reason", err)
		}
	})
}

func TestIncrementalDrawing(t *testing.T) {
	// Each frame draws a single new pixel, the previous ones must stay.
	unit := &stubUnit{cost: 10, boundary: func(int) bool { return true }}
	unit.plot = func(n int, out *StepOutcome) {
		out.Plot(uint32(n-1), 0, Color(0xFF000000|n))
	}
	core := mustInit(t, Config{CyclesPerFrame: 100, FramebufferWidth: 5, FramebufferHeight: 1}, unit)

	for range 5 {
		mustAdvance(t, core, input.Latch{})
	}

	want := []Color{0xFF000001, 0xFF000002, 0xFF000003, 0xFF000004, 0xFF000005}
	if diff := cmp.Diff(want, pixels(core.Front())); diff != "" {
		t.Errorf("front buffer mismatch (-want +got):\n%s", diff)
	}
}

func TestInitConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero-cycles", Config{CyclesPerFrame: 0, FramebufferWidth: 4, FramebufferHeight: 4}, "cycles_per_frame"},
		{"zero-width", Config{CyclesPerFrame: 1, FramebufferWidth: 0, FramebufferHeight: 4}, "framebuffer_width"},
		{"zero-height", Config{CyclesPerFrame: 1, FramebufferWidth: 4, FramebufferHeight: 0}, "framebuffer_height"},
		{"too-large", Config{CyclesPerFrame: 1, FramebufferWidth: 1 << 16, FramebufferHeight: 1 << 16}, "framebuffer_width"},
		{"bad-policy", Config{CyclesPerFrame: 1, FramebufferWidth: 4, FramebufferHeight: 4, Bounds: 7}, "bounds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, err := Init(tt.cfg, &stubUnit{cost: 1})
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Init error = %v, want ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("ConfigError.Field = %q, want %q", cerr.Field, tt.field)
			}
			if core != nil {
				t.Errorf("Init returned a core along with an error")
			}
		})
	}

	if _, err := Init(Config{CyclesPerFrame: 1, FramebufferWidth: 1, FramebufferHeight: 1}, nil); err == nil {
		t.Errorf("Init with a nil unit should fail")
	}
}

func BenchmarkAdvanceFrame(b *testing.B) {
	unit := &stubUnit{cost: 4}
	unit.plot = func(n int, out *StepOutcome) {
		out.Plot(uint32(n%256), uint32(n/256%240), Color(n))
	}
	core := mustInit(b, Config{CyclesPerFrame: 29781, FramebufferWidth: 256, FramebufferHeight: 240}, unit)

	b.ResetTimer()
	for range b.N {
		if _, err := core.AdvanceFrame(input.Latch{}); err != nil {
			b.Fatal(err)
		}
	}
}
