package emu

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"nx/hw"
	"nx/hw/input"
)

// Output is implemented by emulator hosts.
type Output interface {
	// Poll processes host events and updates the host input state. It
	// returns false when the host wants to quit.
	Poll(host *input.HostState) bool

	// Render presents a frame. v is only valid during the call.
	Render(v hw.View) error

	Close() error
}

type HeadlessConfig struct {
	// Frames is the number of frames to run, 0 means forever.
	Frames uint64

	// Screenshot is the path of a PNG file receiving the last frame, scaled
	// by Scale.
	Screenshot string
	Scale      int
}

// Headless is an Output without display and input.
type Headless struct {
	cfg          HeadlessConfig
	framecounter uint64

	// Unscaled copy of the last frame, only kept for the screenshot.
	last *image.RGBA
}

func NewHeadless(cfg HeadlessConfig) *Headless {
	return &Headless{cfg: cfg}
}

func (h *Headless) Poll(_ *input.HostState) bool {
	return h.cfg.Frames == 0 || h.framecounter < h.cfg.Frames
}

func (h *Headless) Render(v hw.View) error {
	h.framecounter++
	if h.cfg.Screenshot == "" {
		return nil
	}
	if h.last == nil || h.last.Rect != v.Bounds() {
		h.last = image.NewRGBA(v.Bounds())
	}
	v.AppendRGBA(h.last.Pix[:0])
	return nil
}

// Frames returns the number of rendered frames.
func (h *Headless) Frames() uint64 { return h.framecounter }

func (h *Headless) Close() error {
	if h.last == nil {
		return nil
	}
	img := h.last
	if h.cfg.Scale > 1 {
		img = scaleNearest(img, h.cfg.Scale)
	}
	if err := SaveAsPNG(img, h.cfg.Screenshot); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}
	return nil
}

// scaleNearest returns a copy of src, scaled by a factor of scale with
// nearest-neighbor interpolation.
func scaleNearest(src image.Image, scale int) *image.RGBA {
	scale = max(scale, 1)
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func SaveAsPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
