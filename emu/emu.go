package emu

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"nx/emu/digest"
	"nx/emu/log"
	"nx/emu/trace"
	"nx/hw"
	"nx/hw/input"
)

// Status is a snapshot of the emulator state, published after each frame.
type Status struct {
	Frame   uint64
	Cycles  uint64
	Balance int64
	Digest  string
	Paused  bool
	Faults  int
}

type Emulator struct {
	Core *hw.Core
	out  Output
	cfg  Config

	host    input.HostState
	digest  *digest.Video
	tracer  *trace.Writer
	rec     *trace.Recorder
	player  *trace.Player
	limiter *Limiter
	faults  int

	// frame counts the frames of the session. Unlike the core frame counter
	// it survives resets, recordings and replays are indexed with it.
	frame uint64

	// These are accessed concurrently by the emulator loop and remote
	// controllers.
	quit   atomic.Bool
	paused atomic.Bool
	reset  atomic.Bool
	status atomic.Pointer[Status]
}

// Launch creates the core running unit and plugs it to out. It doesn't
// start the emulation loop, call Run() for that.
func Launch(unit hw.Unit, cfg Config, out Output) (*Emulator, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	core, err := hw.Init(cfg.Core.Config, unit)
	if err != nil {
		return nil, fmt.Errorf("core initialization failed: %w", err)
	}

	e := &Emulator{
		Core:   core,
		out:    out,
		cfg:    cfg,
		digest: digest.NewVideo(),
	}

	if cfg.TraceOut != nil {
		e.tracer = trace.NewWriter(cfg.TraceOut)
		log.ModTrace.InfoZ("Writing frame trace").End()
	}
	if cfg.RecordOut != nil {
		e.rec = trace.NewRecorder(cfg.RecordOut)
	}
	if cfg.ReplayIn != nil {
		if e.player, err = trace.NewPlayer(cfg.ReplayIn); err != nil {
			return nil, err
		}
		log.ModInput.InfoZ("Replaying input recording").End()
	}
	if cfg.Video.DisableVSync && cfg.Emulation.FPS > 0 {
		e.limiter = NewLimiter(cfg.Emulation.FPS)
	}

	log.ModEmu.InfoZ("Core initialized").
		String("machine", cfg.Core.Machine).
		Uint32("cycles_per_frame", cfg.Core.CyclesPerFrame).
		Uint32("width", cfg.Core.FramebufferWidth).
		Uint32("height", cfg.Core.FramebufferHeight).
		Stringer("bounds", cfg.Core.Bounds).
		End()

	e.publishStatus()
	return e, nil
}

// latch returns the input of the next frame.
func (e *Emulator) latch(frame uint64) (input.Latch, error) {
	if e.player != nil {
		return e.player.Latch(frame)
	}
	return input.Capture(&e.host), nil
}

// RunOneFrame runs the core for one frame, then renders it.
func (e *Emulator) RunOneFrame() error {
	frame := e.frame
	in, err := e.latch(frame)
	if err != nil {
		return err
	}

	// A frame interrupted by Stop resumes with its original input.
	if e.rec != nil && !e.Core.InFrame() {
		if err := e.rec.Record(frame, in); err != nil {
			return fmt.Errorf("input recording: %w", err)
		}
	}

	res, err := e.Core.AdvanceFrame(in)
	switch {
	case errors.Is(err, hw.ErrStopped):
		log.ModCore.DebugZ("Frame interrupted").Uint64("frame", frame).End()
		return nil
	case err != nil:
		e.frame++
		return e.handleFault(err)
	}
	e.frame++

	front := e.Core.Front()
	e.digest.Add(front)

	log.ModCore.DebugZ("Frame completed").
		Uint64("frame", res.Frame).
		Uint64("cycles", res.CyclesConsumed).
		Bool("boundary", res.BoundaryReached).
		Int64("balance", e.Core.Balance()).
		End()
	if res.DroppedWrites > 0 {
		log.ModVideo.DebugZ("Dropped out of bounds writes").
			Uint64("frame", res.Frame).
			Int("count", res.DroppedWrites).
			End()
	}

	if e.tracer != nil {
		f := trace.NewFrame(res, e.Core.Balance(), e.digest.Hash())
		if err := e.tracer.WriteFrame(f); err != nil {
			return fmt.Errorf("frame trace: %w", err)
		}
		log.ModTrace.DebugZ("frame").
			Uint64("frame", f.Frame).
			String("digest", f.Digest).
			End()
	}

	if err := e.out.Render(front); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	e.publishStatus()
	return nil
}

func (e *Emulator) handleFault(err error) error {
	z := log.ModEmu.ErrorZ("Core halted").
		Uint64("frame", e.Core.Frames()).
		Error("err", err)

	var fault *hw.ExecutionFault
	if errors.As(err, &fault) {
		z = z.Stringer("code", fault.Code).Hex32("pc", fault.PC)
	}
	z.End()

	if e.cfg.Emulation.OnFault != FaultReset {
		return err
	}

	e.faults++
	log.ModEmu.WarnZ("Resetting core after fault").Int("faults", e.faults).End()
	e.Core.Reset()
	e.publishStatus()
	return nil
}

func (e *Emulator) loop() error {
	for e.out.Poll(&e.host) {
		// Handle pause.
		if e.isPaused() {
			// Don't burn cpu while paused.
			time.Sleep(100 * time.Millisecond)
		} else if err := e.RunOneFrame(); err != nil {
			return err
		}
		if e.shouldStop() {
			break
		}
		e.handleReset()
		if e.limiter != nil {
			e.limiter.Wait()
		}
	}
	return nil
}

// Run runs the emulation loop until the output or a controller stops it, or
// the core halts with the stop fault policy.
func (e *Emulator) Run() error {
	err := e.loop()
	if cerr := e.out.Close(); cerr != nil && err == nil {
		err = cerr
	}

	log.ModEmu.InfoZ("Emulation loop exited").
		Uint64("frames", e.Core.Frames()).
		String("digest", e.Digest()).
		End()
	return err
}

// Digest returns the chained digest of all the frames rendered so far.
func (e *Emulator) Digest() string { return e.digest.Hash() }

// Status returns the status after the last completed frame.
func (e *Emulator) Status() Status {
	st := *e.status.Load()
	st.Paused = e.isPaused()
	return st
}

func (e *Emulator) publishStatus() {
	e.status.Store(&Status{
		Frame:   e.Core.Frames(),
		Cycles:  e.Core.Cycles(),
		Balance: e.Core.Balance(),
		Digest:  e.digest.Hash(),
		Faults:  e.faults,
	})
}

// SetPause, Stop and Reset allow to control the emulator loop in a
// concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) Reset()              { e.reset.Store(true) }

// Stop stops the emulation loop. The frame being emulated, if any, is
// interrupted at the next step.
func (e *Emulator) Stop() {
	e.quit.Store(true)
	e.Core.Stop()
}

func (e *Emulator) isPaused() bool {
	return e.paused.Load()
}

func (e *Emulator) shouldStop() bool {
	return e.quit.Load()
}

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing reset").End()
		e.Core.Reset()
		e.publishStatus()
	}
}
