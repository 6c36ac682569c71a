package emu

import (
	"fmt"
	"io"

	"nx/hw"
	"nx/hw/machines"
)

type Config struct {
	Core      CoreConfig      `toml:"core"`
	Video     VideoConfig     `toml:"video"`
	Emulation EmulationConfig `toml:"emulation"`

	TraceOut  io.Writer `toml:"-"` // frame trace
	RecordOut io.Writer `toml:"-"` // input recording
	ReplayIn  io.Reader `toml:"-"` // input to replay instead of the host input
}

type CoreConfig struct {
	Machine string `toml:"machine"`
	hw.Config
}

type VideoConfig struct {
	DisableVSync bool   `toml:"disable_vsync"`
	Monitor      int32  `toml:"monitor"`
	Scale        int    `toml:"scale"`
	Shader       string `toml:"shader"` // none or crt
}

type EmulationConfig struct {
	OnFault FaultPolicy `toml:"on_fault"`

	// FPS limits the frame rate of hosts without vsync, 0 means unlimited.
	FPS int `toml:"fps"`
}

// DefaultConfig returns the configuration of a NTSC-like machine: 29781
// cycles per frame (1.79MHz at 60Hz), on a 256x240 screen.
func DefaultConfig() Config {
	return Config{
		Core: CoreConfig{
			Machine: "nx8",
			Config: hw.Config{
				CyclesPerFrame:    29781,
				FramebufferWidth:  256,
				FramebufferHeight: 240,
				Bounds:            hw.BoundsFail,
			},
		},
		Video: VideoConfig{
			Scale:  2,
			Shader: "none",
		},
		Emulation: EmulationConfig{
			OnFault: FaultStop,
			FPS:     60,
		},
	}
}

// Check validates the configuration.
func (cfg *Config) Check() error {
	if err := cfg.Core.Check(); err != nil {
		return err
	}
	if _, ok := machines.All[cfg.Core.Machine]; !ok {
		return fmt.Errorf("unknown machine %q", cfg.Core.Machine)
	}
	if cfg.Video.Scale < 1 || cfg.Video.Scale > 16 {
		return fmt.Errorf("invalid video scale %d (must be in [1, 16])", cfg.Video.Scale)
	}
	if cfg.Emulation.FPS < 0 {
		return fmt.Errorf("invalid fps %d", cfg.Emulation.FPS)
	}
	return nil
}

// FaultPolicy tells what the emulator does when the core halts.
type FaultPolicy uint8

const (
	FaultStop  FaultPolicy = iota // stop emulation and report the fault
	FaultReset                    // log the fault and reset the core
)

func (p FaultPolicy) String() string {
	switch p {
	case FaultStop:
		return "stop"
	case FaultReset:
		return "reset"
	}
	return fmt.Sprintf("FaultPolicy(%d)", uint8(p))
}

func (p FaultPolicy) MarshalText() ([]byte, error) {
	if p > FaultReset {
		return nil, fmt.Errorf("invalid fault policy %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *FaultPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "stop":
		*p = FaultStop
	case "reset":
		*p = FaultReset
	default:
		return fmt.Errorf("invalid fault policy %q (stop|reset)", text)
	}
	return nil
}
