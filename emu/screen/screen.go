// Package screen is the windowed host of the emulator, based on SDL2 and
// OpenGL. All SDL calls run on the SDL main thread, so the program must be
// started with sdl.Main.
package screen

import (
	"fmt"
	"slices"

	"github.com/veandco/go-sdl2/sdl"

	"nx/emu/log"
	"nx/emu/screen/shaders"
	"nx/hw"
	"nx/hw/input"
)

type Config struct {
	Title        string
	Scale        int
	Monitor      int32
	DisableVSync bool
	Shader       string // see shaders.Names
	Keys         KeyMap
}

// Screen shows frames in a window and reads host input from the keyboard and
// game controllers. It implements emu.Output.
type Screen struct {
	cfg   Config
	codes [input.NumButtons]Code

	win *window
	gcs *GameControllers
	pix []byte
}

// New opens a window fitting a width x height framebuffer.
func New(cfg Config, width, height int) (*Screen, error) {
	if cfg.Title == "" {
		cfg.Title = "Nx Emulator"
	}
	if cfg.Shader == "" {
		cfg.Shader = shaders.DefaultName
	}
	if !slices.Contains(shaders.Names(), cfg.Shader) {
		log.ModVideo.Warnf("Invalid shader name %q, fallback to %q", cfg.Shader, shaders.DefaultName)
		cfg.Shader = shaders.DefaultName
	}
	cfg.Scale = max(cfg.Scale, 1)

	s := &Screen{
		cfg:   cfg,
		codes: cfg.Keys.Codes(),
		pix:   make([]byte, 0, width*height*4),
	}

	var err error
	sdl.Do(func() {
		s.win, err = newWindow(cfg, width, height)
		if err != nil {
			return
		}
		s.gcs = NewGameControllers()
	})
	if err != nil {
		return nil, err
	}
	log.ModVideo.InfoZ("window opened").
		Int("width", width).
		Int("height", height).
		Int("scale", cfg.Scale).
		String("shader", cfg.Shader).
		End()
	return s, nil
}

func (s *Screen) Poll(host *input.HostState) bool {
	running := true
	sdl.Do(func() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN && e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					running = false
				}
			case *sdl.WindowEvent:
				if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
					s.win.resize(e.Data1, e.Data2)
				}
			case *sdl.ControllerDeviceEvent:
				s.gcs.UpdateDevices(e)
			}
		}
		readButtons(host, &s.codes, sdl.GetKeyboardState(), s.gcs)
		s.gcs.readAxes(host)
	})
	return running
}

func (s *Screen) Render(v hw.View) error {
	if v.Width() != int(s.win.texw) || v.Height() != int(s.win.texh) {
		return fmt.Errorf("frame size %dx%d does not match window texture %dx%d",
			v.Width(), v.Height(), s.win.texw, s.win.texh)
	}
	s.pix = v.AppendRGBA(s.pix[:0])
	sdl.Do(func() {
		s.win.draw(s.pix)
	})
	return nil
}

func (s *Screen) Close() error {
	var err error
	sdl.Do(func() {
		s.gcs.Close()
		err = s.win.Close()
	})
	return err
}
