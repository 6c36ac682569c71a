package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"nx/hw"
	"nx/statsview"
	"nx/ui"
)

func main() {
	args := parseArgs(os.Args[1:])

	if args.mode == versionMode {
		printVersion()
		return
	}
	if statsview.Available() {
		statsview.Launch(os.Stderr)
	}

	switch args.mode {
	case disasmMode:
		checkf(disasmMain(args.Disasm), "disassembly failed")
		return
	case remoteMode:
		checkf(remoteMain(args.Remote), "remote command failed")
		return
	}

	cfg := loadConfig(&args)
	switch args.mode {
	case runMode:
		runMain(args.Run, &cfg)
	case headlessMode:
		checkf(headlessMain(args.Headless, &cfg), "emulation failed")
	case ttyMode:
		checkf(ttyMain(args.TTY, &cfg), "emulation failed")
	case verifyMode:
		checkf(verifyMain(args.Verify, &cfg), "verification failed")
	}
}

// loadConfig loads the configuration file and applies the command line
// overrides.
func loadConfig(args *CLI) ui.Config {
	var cfg ui.Config
	if args.Config != "" {
		var err error
		cfg, err = ui.LoadConfig(args.Config)
		checkf(err, "failed to load configuration")
	} else {
		cfg = ui.LoadConfigOrDefault()
	}

	if args.Machine != "" {
		cfg.Core.Machine = args.Machine
	}
	if args.Cycles != 0 {
		cfg.Core.CyclesPerFrame = args.Cycles
	}
	if args.Width != 0 {
		cfg.Core.FramebufferWidth = args.Width
	}
	if args.Height != 0 {
		cfg.Core.FramebufferHeight = args.Height
	}
	if args.Bounds != "" {
		var p hw.BoundsPolicy
		checkf(p.UnmarshalText([]byte(args.Bounds)), "invalid --bounds")
		cfg.Core.Bounds = p
	}
	checkf(cfg.Check(), "invalid configuration")
	return cfg
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("nx", version)
}
