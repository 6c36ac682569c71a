package hw

import "fmt"

// BoundsPolicy decides what the core does with pixel writes falling outside
// the framebuffer.
type BoundsPolicy uint8

const (
	// BoundsFail rejects all the writes of the offending step and halts the
	// core with an OutOfBoundsError. The step cycles are not counted, but
	// the unit internal state is left as the step made it: a unit only
	// reports its writes once it has run.
	BoundsFail BoundsPolicy = iota

	// BoundsIgnore drops out of bounds writes and counts them in
	// FrameResult.DroppedWrites.
	BoundsIgnore
)

func (p BoundsPolicy) String() string {
	switch p {
	case BoundsFail:
		return "fail"
	case BoundsIgnore:
		return "ignore"
	}
	return fmt.Sprintf("BoundsPolicy(%d)", uint8(p))
}

func (p BoundsPolicy) MarshalText() ([]byte, error) {
	if p > BoundsIgnore {
		return nil, fmt.Errorf("invalid bounds policy %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *BoundsPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "fail":
		*p = BoundsFail
	case "ignore":
		*p = BoundsIgnore
	default:
		return fmt.Errorf("invalid bounds policy %q (want fail or ignore)", text)
	}
	return nil
}

// Largest framebuffer accepted, in pixels.
const maxPixels = 1 << 24

type Config struct {
	CyclesPerFrame    uint32       `toml:"cycles_per_frame"`
	FramebufferWidth  uint32       `toml:"framebuffer_width"`
	FramebufferHeight uint32       `toml:"framebuffer_height"`
	Bounds            BoundsPolicy `toml:"bounds"`
}

// Check validates the configuration. It returns a *ConfigError.
func (cfg Config) Check() error {
	switch {
	case cfg.CyclesPerFrame == 0:
		return &ConfigError{Field: "cycles_per_frame", Reason: "must be greater than zero"}
	case cfg.FramebufferWidth == 0:
		return &ConfigError{Field: "framebuffer_width", Reason: "must be greater than zero"}
	case cfg.FramebufferHeight == 0:
		return &ConfigError{Field: "framebuffer_height", Reason: "must be greater than zero"}
	case uint64(cfg.FramebufferWidth)*uint64(cfg.FramebufferHeight) > maxPixels:
		return &ConfigError{
			Field:  "framebuffer_width",
			Reason: fmt.Sprintf("%dx%d exceeds %d pixels", cfg.FramebufferWidth, cfg.FramebufferHeight, maxPixels),
		}
	case cfg.Bounds > BoundsIgnore:
		return &ConfigError{Field: "bounds", Reason: fmt.Sprintf("unknown policy %d", uint8(cfg.Bounds))}
	}
	return nil
}
