package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"nx/emu"
	"nx/emu/log"
	"nx/emu/rpc"
	"nx/emu/screen"
	"nx/emu/trace"
	"nx/emu/tty"
	"nx/hw"
	"nx/hw/machines"
	"nx/hw/machines/nx8"
	"nx/ui"
)

// loadUnit creates the execution unit of the configured machine, running the
// program image at path if any.
func loadUnit(cfg *emu.Config, path string) (hw.Unit, error) {
	opts := machines.Options{
		Width:  cfg.Core.FramebufferWidth,
		Height: cfg.Core.FramebufferHeight,
	}
	if path != "" {
		img, err := nx8.Open(path)
		if err != nil {
			return nil, err
		}
		opts.Program = img.Code
	}
	return machines.Load(cfg.Core.Machine, opts)
}

// plugFiles sets the trace, record and replay streams of cfg. Replay has
// precedence over the host input.
func plugFiles(cfg *emu.Config, traceout, recordout *outfile, replay *os.File) {
	if traceout != nil {
		cfg.TraceOut = traceout
	}
	if recordout != nil {
		cfg.RecordOut = recordout
	}
	if replay != nil {
		cfg.ReplayIn = replay
	}
}

// closeFiles closes the files given on the command line. Flags left unset
// are nil.
func closeFiles(files ...io.Closer) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if fd, ok := f.(*os.File); ok && fd == nil {
			continue
		}
		if err := f.Close(); err != nil {
			log.ModEmu.WarnZ("close error").Error("err", err).End()
		}
	}
}

// runMain runs the emulator in a window.
func runMain(args Run, cfg *ui.Config) {
	var exitcode int
	sdl.Main(func() {
		exitcode = runWindow(args, cfg)
	})
	os.Exit(exitcode)
}

func runWindow(args Run, cfg *ui.Config) int {
	cfg.Video.Monitor = args.Monitor
	if args.Scale != 0 {
		cfg.Video.Scale = args.Scale
	}
	if args.Shader != "" {
		cfg.Video.Shader = args.Shader
	}
	if args.NoVSync {
		cfg.Video.DisableVSync = true
	}
	if args.FPS >= 0 {
		cfg.Emulation.FPS = args.FPS
	}
	if err := cfg.Check(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	unit, err := loadUnit(&cfg.Config, args.Program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading program: %v\n", err)
		return 1
	}

	plugFiles(&cfg.Config, args.Trace, args.Record, args.Replay)
	defer closeFiles(args.Trace, args.Record, args.Replay)

	out, err := screen.New(screen.Config{
		Scale:        cfg.Video.Scale,
		Monitor:      cfg.Video.Monitor,
		DisableVSync: cfg.Video.DisableVSync,
		Shader:       cfg.Video.Shader,
		Keys:         cfg.Keys,
	}, int(cfg.Core.FramebufferWidth), int(cfg.Core.FramebufferHeight))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open window: %v\n", err)
		return 1
	}

	emulator, err := emu.Launch(unit, cfg.Config, out)
	if err != nil {
		out.Close()
		fmt.Fprintf(os.Stderr, "failed to start emulator: %v\n", err)
		return 1
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	if args.Port != 0 {
		fmt.Println("creating rpc server", args.Port)
		server, err := rpc.NewServer(args.Port, emulator)
		if err != nil {
			fmt.Fprintf(os.Stderr, "RPC error: %v\n", err)
			return 1
		}
		defer server.Close()
	}

	if err := emulator.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "emulation stopped: %v\n", err)
		return 1
	}
	return 0
}

// headlessMain runs the emulator without display for a fixed number of
// frames, then prints the frames digest.
func headlessMain(args Headless, cfg *ui.Config) error {
	if args.Scale != 0 {
		cfg.Video.Scale = args.Scale
	}
	unit, err := loadUnit(&cfg.Config, args.Program)
	if err != nil {
		return err
	}

	plugFiles(&cfg.Config, args.Trace, args.Record, args.Replay)
	defer closeFiles(args.Trace, args.Record, args.Replay)

	out := emu.NewHeadless(emu.HeadlessConfig{
		Frames:     args.Frames,
		Screenshot: args.Screenshot,
		Scale:      cfg.Video.Scale,
	})
	e, err := emu.Launch(unit, cfg.Config, out)
	if err != nil {
		return err
	}
	if err := e.Run(); err != nil {
		return err
	}
	fmt.Printf("%d frames, digest %s\n", out.Frames(), e.Digest())
	return nil
}

// ttyMain runs the emulator in the terminal.
func ttyMain(args TTY, cfg *ui.Config) error {
	cfg.Video.DisableVSync = true
	cfg.Emulation.FPS = args.FPS

	unit, err := loadUnit(&cfg.Config, args.Program)
	if err != nil {
		return err
	}

	plugFiles(&cfg.Config, nil, args.Record, args.Replay)
	defer closeFiles(args.Record, args.Replay)

	out, err := tty.New(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	e, err := emu.Launch(unit, cfg.Config, out)
	if err != nil {
		out.Close()
		return err
	}
	return e.Run()
}

// verifyMain runs replicas of the same program concurrently, each on its own
// core, and checks their frame traces are identical.
func verifyMain(args Verify, cfg *ui.Config) error {
	var replay []byte
	if args.Replay != nil {
		var err error
		replay, err = io.ReadAll(args.Replay)
		args.Replay.Close()
		if err != nil {
			return fmt.Errorf("failed to read input recording: %w", err)
		}
	}

	res, err := verify(cfg.Config, args.Program, args.Frames, args.Replicas, replay)
	if err != nil {
		return err
	}
	fmt.Printf("%d replicas identical over %d frames, digest %s\n", args.Replicas, res.frames, res.digest)
	return nil
}

type verifyResult struct {
	frames int
	digest string
}

func verify(cfg emu.Config, program string, frames uint64, replicas int, replay []byte) (verifyResult, error) {
	if replicas < 2 {
		return verifyResult{}, fmt.Errorf("at least 2 replicas are required, got %d", replicas)
	}
	if frames == 0 {
		return verifyResult{}, fmt.Errorf("the number of frames must be positive")
	}

	traces := make([]bytes.Buffer, replicas)
	digests := make([]string, replicas)

	var g errgroup.Group
	for i := range replicas {
		g.Go(func() error {
			ecfg := cfg
			ecfg.TraceOut = &traces[i]
			ecfg.RecordOut = nil
			ecfg.ReplayIn = nil
			ecfg.Video.DisableVSync = true
			ecfg.Emulation.FPS = 0
			ecfg.Emulation.OnFault = emu.FaultStop
			if replay != nil {
				ecfg.ReplayIn = bytes.NewReader(replay)
			}

			unit, err := loadUnit(&ecfg, program)
			if err != nil {
				return err
			}
			e, err := emu.Launch(unit, ecfg, emu.NewHeadless(emu.HeadlessConfig{Frames: frames}))
			if err != nil {
				return err
			}
			if err := e.Run(); err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			digests[i] = e.Digest()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return verifyResult{}, err
	}

	ref, err := trace.ReadFrames(&traces[0])
	if err != nil {
		return verifyResult{}, err
	}
	for i := 1; i < replicas; i++ {
		trc, err := trace.ReadFrames(&traces[i])
		if err != nil {
			return verifyResult{}, err
		}
		if k := trace.Diverge(ref, trc); k >= 0 {
			return verifyResult{}, fmt.Errorf("replica %d diverges from replica 0 at frame %d", i, k)
		}
	}
	return verifyResult{frames: len(ref), digest: digests[0]}, nil
}

func disasmMain(args Disasm) error {
	img, err := nx8.Open(args.Program)
	if err != nil {
		return err
	}
	img.PrintInfos(os.Stdout)
	if args.Infos {
		return nil
	}
	fmt.Println()
	return nx8.Disassemble(os.Stdout, img.Code)
}

func remoteMain(args Remote) error {
	client, err := rpc.NewClient(args.Port)
	if err != nil {
		return err
	}
	defer client.Close()

	switch args.Action {
	case "pause":
		return client.SetPause(true)
	case "resume":
		return client.SetPause(false)
	case "reset":
		return client.Reset()
	case "stop":
		return client.Stop()
	}

	st, err := client.Status()
	if err != nil {
		return err
	}
	fmt.Printf("frame:   %d\n", st.Frame)
	fmt.Printf("cycles:  %d\n", st.Cycles)
	fmt.Printf("balance: %d\n", st.Balance)
	fmt.Printf("paused:  %t\n", st.Paused)
	fmt.Printf("faults:  %d\n", st.Faults)
	fmt.Printf("digest:  %s\n", st.Digest)
	return nil
}
