package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"nx/emu"
	"nx/emu/log"
	"nx/hw/machines/nx8"
	"nx/ui"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context, error) {
	t.Helper()
	var cli CLI
	parser, err := newParser(&cli, kong.Exit(func(int) { t.Fatalf("parser exited") }))
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := parser.Parse(args)
	return &cli, ctx, err
}

func writeProgram(t *testing.T, p *nx8.Program) string {
	t.Helper()
	code, err := p.Assemble()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "prog.nx8")
	if err := os.WriteFile(path, code, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommandMode(t *testing.T) {
	prog := writeProgram(t, nx8.NewProgram().HALT())

	tests := []struct {
		args []string
		want mode
	}{
		{nil, runMode},
		{[]string{prog}, runMode},
		{[]string{"run", "--scale", "3", prog}, runMode},
		{[]string{"headless", "--frames", "10"}, headlessMode},
		{[]string{"tty", prog}, ttyMode},
		{[]string{"verify", "--replicas", "4"}, verifyMode},
		{[]string{"disasm", prog}, disasmMode},
		{[]string{"remote", "status", "--port", "1234"}, remoteMode},
		{[]string{"version"}, versionMode},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, ctx, err := parse(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got := commandMode(ctx.Command()); got != tt.want {
				t.Errorf("commandMode(%q) = %d, want %d", ctx.Command(), got, tt.want)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	cli, _, err := parse(t, "--machine", "fill", "--cycles", "1000", "--width", "64", "--height", "48",
		"headless", "--frames", "10", "--scale", "4")
	if err != nil {
		t.Fatal(err)
	}
	if cli.Machine != "fill" || cli.Cycles != 1000 || cli.Width != 64 || cli.Height != 48 {
		t.Errorf("global flags = %q %d %dx%d", cli.Machine, cli.Cycles, cli.Width, cli.Height)
	}
	if cli.Headless.Frames != 10 || cli.Headless.Scale != 4 {
		t.Errorf("headless flags = %d frames, scale %d", cli.Headless.Frames, cli.Headless.Scale)
	}

	if _, _, err := parse(t, "remote", "explode", "--port", "1"); err == nil {
		t.Errorf("invalid remote action accepted")
	}
	if _, _, err := parse(t, "disasm", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("missing program accepted")
	}
}

func TestLogModMask(t *testing.T) {
	if _, _, err := parse(t, "--log", "core,video", "version"); err != nil {
		t.Fatal(err)
	}
	if !log.ModCore.Enabled(log.DebugLevel) || !log.ModVideo.Enabled(log.DebugLevel) {
		t.Errorf("core and video debug logs should be enabled")
	}
	log.DisableDebugModules(log.ModuleMaskAll)

	for _, bad := range []string{"nope", "all,no", "core,no"} {
		if _, _, err := parse(t, "--log", bad, "version"); err == nil {
			t.Errorf("--log %s accepted", bad)
		}
	}
}

func TestOutfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	cli, _, err := parse(t, "headless", "--trace", path)
	if err != nil {
		t.Fatal(err)
	}
	if cli.Headless.Trace == nil || cli.Headless.Trace.String() != path {
		t.Fatalf("trace outfile not decoded")
	}
	if _, err := cli.Headless.Trace.Write([]byte("hello\n")); err != nil {
		t.Fatal(err)
	}
	if err := cli.Headless.Trace.Close(); err != nil {
		t.Fatal(err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "hello\n" {
		t.Errorf("file content = %q", buf)
	}

	var nilfile *outfile
	if err := nilfile.Close(); err != nil {
		t.Errorf("closing nil outfile: %v", err)
	}
}

func testConfig() emu.Config {
	cfg := emu.DefaultConfig()
	cfg.Core.FramebufferWidth = 32
	cfg.Core.FramebufferHeight = 24
	return cfg
}

func TestVerify(t *testing.T) {
	for _, machine := range []string{"nx8", "fill"} {
		t.Run(machine, func(t *testing.T) {
			cfg := testConfig()
			cfg.Core.Machine = machine

			res, err := verify(cfg, "", 20, 3, nil)
			if err != nil {
				t.Fatal(err)
			}
			if res.frames != 20 {
				t.Errorf("verified %d frames, want 20", res.frames)
			}
			if len(res.digest) != 40 {
				t.Errorf("digest = %q, want 40 hex chars", res.digest)
			}
		})
	}
}

func TestVerifyReplay(t *testing.T) {
	cfg := testConfig()
	replay := []byte(`{"frame":0,"buttons":0,"axes":[0,0]}
{"frame":3,"buttons":8,"axes":[0,0]}
{"frame":9,"buttons":0,"axes":[0,0]}
`)
	withInput, err := verify(cfg, "", 12, 2, replay)
	if err != nil {
		t.Fatal(err)
	}
	without, err := verify(cfg, "", 12, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if withInput.digest == without.digest {
		t.Errorf("replayed input has no effect on the demo frames")
	}
}

func TestVerifyErrors(t *testing.T) {
	cfg := testConfig()
	if _, err := verify(cfg, "", 10, 1, nil); err == nil {
		t.Errorf("single replica accepted")
	}
	if _, err := verify(cfg, "", 0, 2, nil); err == nil {
		t.Errorf("zero frames accepted")
	}

	// Reading past the I/O registers faults the core.
	prog := writeProgram(t, nx8.NewProgram().
		LDI(nx8.R1, 0xF100).
		LDB(nx8.R2, nx8.R1, 0).
		HALT())
	if _, err := verify(cfg, prog, 10, 2, nil); err == nil {
		t.Errorf("faulting program verified")
	}
}

func TestLoadUnit(t *testing.T) {
	prog := writeProgram(t, nx8.NewProgram().HALT())

	cfg := testConfig()
	if _, err := loadUnit(&cfg, prog); err != nil {
		t.Fatal(err)
	}

	cfg.Core.Machine = "fill"
	if _, err := loadUnit(&cfg, prog); err == nil {
		t.Errorf("fill machine accepted a program")
	}
}

func TestHeadlessClosesFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.jsonl")
	rec := `{"frame":0,"buttons":0,"axes":[0,0]}
{"frame":1,"buttons":8,"axes":[0,0]}
`
	if err := os.WriteFile(path, []byte(rec), 0644); err != nil {
		t.Fatal(err)
	}
	replay, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := ui.DefaultConfig()
	cfg.Config = testConfig()
	if err := headlessMain(Headless{Frames: 3, Replay: replay}, &cfg); err != nil {
		t.Fatal(err)
	}
	if err := replay.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("replay file still open after headless run, Close() = %v", err)
	}

	// Unset file flags are skipped.
	closeFiles((*outfile)(nil), (*os.File)(nil))
}
