package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"nx/emu/log"
	"nx/hw/machines"
)

type mode byte

const (
	runMode      mode = iota // Run a program in a window
	headlessMode             // Run without display
	ttyMode                  // Run in the terminal
	verifyMode               // Check determinism
	disasmMode               // Disassemble a program
	remoteMode               // Control a running emulator
	versionMode              // Show nx version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run a program in a window. (default command)" default:"withargs"`
		Headless Headless `cmd:"" help:"Run a program without display and print the frames digest."`
		TTY      TTY      `cmd:"" name:"tty" help:"Run a program in the terminal."`
		Verify   Verify   `cmd:"" help:"Run replicas of a program and check they produce the same frames."`
		Disasm   Disasm   `cmd:"" help:"Disassemble a nx8 program."`
		Remote   Remote   `cmd:"" help:"Control an emulator started with --port."`
		Version  Version  `cmd:"" help:"Show nx version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"${config_help}" type:"existingfile" placeholder:"FILE"`

		Machine string `name:"machine" help:"${machine_help}" placeholder:"NAME"`
		Cycles  uint32 `name:"cycles" help:"Cycles per frame."`
		Width   uint32 `name:"width" help:"Framebuffer width."`
		Height  uint32 `name:"height" help:"Framebuffer height."`
		Bounds  string `name:"bounds" help:"Out of bounds pixel writes policy (fail|ignore)."`

		mode mode
	}

	Run struct {
		Program string `arg:"" name:"program" help:"${program_help}" optional:"" type:"existingfile"`

		Monitor    int32    `name:"monitor" help:"Monitor index to use." default:"0"`
		Scale      int      `name:"scale" help:"Window scale factor."`
		Shader     string   `name:"shader" help:"${shader_help}"`
		NoVSync    bool     `name:"no-vsync" help:"Disable vsync, frames are paced by --fps."`
		FPS        int      `name:"fps" help:"Frame rate limit without vsync, 0 for unlimited." default:"-1"`
		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace      *outfile `name:"trace" help:"${trace_help}" placeholder:"FILE|stdout|stderr"`
		Record     *outfile `name:"record" help:"${record_help}" placeholder:"FILE|stdout|stderr"`
		Replay     *os.File `name:"replay" help:"${replay_help}" placeholder:"FILE"`
		Port       int      `name:"port" help:"Start a remote control server on this port."`
	}

	Headless struct {
		Program string `arg:"" name:"program" help:"${program_help}" optional:"" type:"existingfile"`

		Frames     uint64   `name:"frames" help:"Number of frames to run." default:"600"`
		Screenshot string   `name:"screenshot" help:"Save the last frame as PNG." type:"path" placeholder:"FILE"`
		Scale      int      `name:"scale" help:"Screenshot scale factor."`
		Trace      *outfile `name:"trace" help:"${trace_help}" placeholder:"FILE|stdout|stderr"`
		Record     *outfile `name:"record" help:"${record_help}" placeholder:"FILE|stdout|stderr"`
		Replay     *os.File `name:"replay" help:"${replay_help}" placeholder:"FILE"`
	}

	TTY struct {
		Program string `arg:"" name:"program" help:"${program_help}" optional:"" type:"existingfile"`

		FPS    int      `name:"fps" help:"Frame rate limit, 0 for unlimited." default:"30"`
		Record *outfile `name:"record" help:"${record_help}" placeholder:"FILE|stdout|stderr"`
		Replay *os.File `name:"replay" help:"${replay_help}" placeholder:"FILE"`
	}

	Verify struct {
		Program string `arg:"" name:"program" help:"${program_help}" optional:"" type:"existingfile"`

		Frames   uint64   `name:"frames" help:"Number of frames to run." default:"600"`
		Replicas int      `name:"replicas" help:"Number of cores to run concurrently." default:"2"`
		Replay   *os.File `name:"replay" help:"${replay_help}" placeholder:"FILE"`
	}

	Disasm struct {
		Program string `arg:"" name:"program" help:"nx8 program image." type:"existingfile"`
		Infos   bool   `name:"infos" help:"Only show program infos."`
	}

	Remote struct {
		Action string `arg:"" name:"action" help:"One of ${enum}." enum:"status,pause,resume,reset,stop"`
		Port   int    `name:"port" help:"Port of the remote control server." required:""`
	}

	Version struct{}
)

var vars = kong.Vars{
	"program_help":    "nx8 program image. Without it, the machine runs its built-in program.",
	"config_help":     "Configuration file. (default: nx/config.toml in the user config directory)",
	"machine_help":    "Machine to emulate: " + strings.Join(machines.Names(), ", ") + ".",
	"shader_help":     "Display shader (none|crt).",
	"cpuprofile_help": "Write CPU profile to file.",
	"trace_help":      "Write per-frame trace (JSON lines).",
	"record_help":     "Record input (JSON lines).",
	"replay_help":     "Replay recorded input instead of reading the host input.",
	"log_help":        "Enable logging for specified modules.",
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(cli, append([]kong.Option{
		kong.Name("nx"),
		kong.Description("Frame-stepped emulation core and hosts."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars,
	}, options...)...)
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := newParser(&cfg)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cfg.mode = commandMode(ctx.Command())
	return cfg
}

// commandMode returns the mode of a kong command, such as "run <program>".
func commandMode(cmd string) mode {
	name, _, _ := strings.Cut(cmd, " ")
	switch name {
	case "headless":
		return headlessMode
	case "tty":
		return ttyMode
	case "verify":
		return verifyMode
	case "disasm":
		return disasmMode
	case "remote":
		return remoteMode
	case "version":
		return versionMode
	}
	return runMode
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if commandMode(ctx.Command()) != versionMode {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode creates the file with the name found in the command line, or uses
// stdout or stderr if the name is one of these. The outfile is then an
// io.WriteCloser that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error {
	if f == nil {
		return nil
	}
	return f.close()
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
