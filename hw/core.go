package hw

import (
	"errors"
	"fmt"
	"sync/atomic"

	"nx/hw/input"
)

// FrameResult reports what happened during a call to AdvanceFrame.
type FrameResult struct {
	Frame           uint64 // index of the frame, starting at 0 after power-on
	CyclesConsumed  uint64 // cycles run by this call
	BoundaryReached bool   // the unit signaled the end of the frame
	DroppedWrites   int    // out of bounds writes dropped (BoundsIgnore)
}

// Core is a frame-stepped execution core. It drives an execution unit one
// step at a time within a per-frame cycle budget, and publishes the pixels it
// emits through a double buffered framebuffer.
//
// A Core is not safe for concurrent use, with the exception of Stop. The host
// calls AdvanceFrame, then reads Front, and so on.
type Core struct {
	cfg   Config
	unit  Unit
	clock Clock
	fb    *Framebuffer

	latch  input.Latch // input of the open frame
	out    StepOutcome
	frames uint64
	fault  error // non-nil once halted

	stop atomic.Bool
}

// Init validates cfg and creates a core driving unit, put at power-on state.
func Init(cfg Config, unit Unit) (*Core, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, &ConfigError{Field: "unit", Reason: "no execution unit"}
	}

	c := &Core{
		cfg:   cfg,
		unit:  unit,
		clock: newClock(cfg.CyclesPerFrame),
		fb:    NewFramebuffer(cfg.FramebufferWidth, cfg.FramebufferHeight),
	}
	c.Reset()
	return c, nil
}

// AdvanceFrame runs the execution unit until the frame budget is exhausted or
// the unit signals a frame boundary, then swaps the framebuffer.
//
// The latch is only used when a new frame starts. When resuming a frame
// interrupted by Stop, the latch captured at the frame start is kept, so that
// all the steps of a frame observe the same input.
//
// On an execution fault, the frame is abandoned without swapping and the
// core halts: further calls return ErrHalted until Reset.
func (c *Core) AdvanceFrame(in input.Latch) (FrameResult, error) {
	res := FrameResult{Frame: c.frames}
	if c.fault != nil {
		return res, fmt.Errorf("%w: %w", ErrHalted, c.fault)
	}

	if c.clock.openFrame() {
		c.latch = in
		c.fb.Sync()
	}

	for !c.clock.exhausted() {
		if c.stop.CompareAndSwap(true, false) {
			return res, ErrStopped
		}

		c.out.clear()
		if err := c.unit.Step(c.latch, &c.out); err != nil {
			return res, c.halt(asFault(err))
		}
		if c.out.Cycles == 0 {
			return res, c.halt(Fault(FaultInternal, 0, "step reported no cycles"))
		}

		dropped, err := c.commit(c.out.Writes)
		if err != nil {
			return res, c.halt(err)
		}
		res.DroppedWrites += dropped

		c.clock.consume(c.out.Cycles)
		res.CyclesConsumed += uint64(c.out.Cycles)

		if c.out.Boundary {
			res.BoundaryReached = true
			break
		}
	}

	c.clock.closeFrame()
	c.fb.Swap()
	c.frames++
	return res, nil
}

// commit writes the pixels emitted by a step to the back buffer. With
// BoundsFail, all writes are checked before any is made.
func (c *Core) commit(writes []PixelWrite) (dropped int, err error) {
	if c.cfg.Bounds == BoundsFail {
		for _, w := range writes {
			if !c.fb.inBounds(w.X, w.Y) {
				return 0, &OutOfBoundsError{X: w.X, Y: w.Y, Width: c.fb.width, Height: c.fb.height}
			}
		}
	}

	for _, w := range writes {
		if err := c.fb.WritePixel(w.X, w.Y, w.Color); err != nil {
			dropped++
		}
	}
	return dropped, nil
}

func (c *Core) halt(err error) error {
	c.fault = err
	return err
}

// asFault converts a step error into an *ExecutionFault.
func asFault(err error) error {
	var f *ExecutionFault
	if errors.As(err, &f) {
		return err
	}
	return &ExecutionFault{Code: FaultInternal, Reason: err.Error()}
}

// Front returns a read-only view of the last completed frame.
func (c *Core) Front() View {
	return c.fb.Front()
}

// Reset puts the execution unit and the clock back at their power-on state,
// clears the framebuffer and the fault, if any. Dimensions are unchanged.
func (c *Core) Reset() {
	c.unit.Reset()
	c.clock.reset()
	c.fb.Clear(0)
	c.latch = input.Latch{}
	c.frames = 0
	c.fault = nil
	c.stop.Store(false)
}

// Stop requests the frame being run to stop at the next step boundary. It
// can be called from any goroutine. If no frame is running, the next call to
// AdvanceFrame stops before the first step.
func (c *Core) Stop() {
	c.stop.Store(true)
}

// Halted reports whether the core stopped on a fault.
func (c *Core) Halted() bool { return c.fault != nil }

// Fault returns the error that halted the core, or nil.
func (c *Core) Fault() error { return c.fault }

// InFrame reports whether a frame was interrupted and will be resumed.
func (c *Core) InFrame() bool { return c.clock.open }

// Cycles returns the number of cycles run since power-on.
func (c *Core) Cycles() uint64 { return c.clock.Total() }

// Balance returns the cycles owed by the next frame (<= 0).
func (c *Core) Balance() int64 { return c.clock.Balance() }

// Frames returns the number of frames completed since power-on.
func (c *Core) Frames() uint64 { return c.frames }

// Config returns the configuration the core was initialized with.
func (c *Core) Config() Config { return c.cfg }
