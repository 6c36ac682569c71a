package screen

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"nx/emu/screen/shaders"
)

type window struct {
	*sdl.Window
	prog    uint32
	texture uint32
	vao     uint32
	context sdl.GLContext

	texw, texh int32
}

// create an opengl window showing a texture of size (texw, texh), scaled by
// cfg.Scale. Must be called from the SDL main thread.
func newWindow(cfg Config, texw, texh int) (*window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_JOYSTICK | sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %s", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	winw := int32(texw * cfg.Scale)
	winh := int32(texh * cfg.Scale)

	var x, y int32 = sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED
	if bounds, err := sdl.GetDisplayBounds(int(cfg.Monitor)); err == nil {
		x = bounds.X + (bounds.W-winw)/2
		y = bounds.Y + (bounds.H-winh)/2
	}

	w, err := sdl.CreateWindow(cfg.Title, x, y, winw, winh,
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %s", err)
	}

	context, err := w.GLCreateContext()
	if err != nil {
		w.Destroy()
		return nil, fmt.Errorf("failed to create OpenGL context: %s", err)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize opengl: %s", err)
	}

	interval := 1
	if cfg.DisableVSync {
		interval = 0
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		return nil, fmt.Errorf("failed to set swap interval: %s", err)
	}

	// Create empty texture buffer.
	tbuf := make([]byte, texw*texh*4)

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(texw), int32(texh), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&tbuf[0]))

	prog, err := shaders.Load(cfg.Shader)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %s", cfg.Shader, err)
	}

	var VBO, VAO, EBO uint32
	gl.GenVertexArrays(1, &VAO)
	gl.GenBuffers(1, &VBO)
	gl.GenBuffers(1, &EBO)

	gl.BindVertexArray(VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Position attributes
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)

	// Texture coordinate attributes.
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	win := &window{
		Window:  w,
		prog:    prog,
		texture: texture,
		vao:     VAO,
		context: context,
		texw:    int32(texw),
		texh:    int32(texh),
	}
	win.resize(winw, winh)
	return win, nil
}

// resize sets the viewport to the largest area of the window that keeps the
// aspect ratio of the texture. The emulated screen itself never changes size.
func (w *window) resize(winw, winh int32) {
	x, y, vw, vh := viewport(winw, winh, w.texw, w.texh)
	gl.Viewport(x, y, vw, vh)
}

func viewport(winw, winh, texw, texh int32) (x, y, w, h int32) {
	if winw <= 0 || winh <= 0 {
		return 0, 0, 0, 0
	}
	// Compare winw/winh and texw/texh without floats.
	if int64(winw)*int64(texh) > int64(winh)*int64(texw) {
		h = winh
		w = int32(int64(winh) * int64(texw) / int64(texh))
	} else {
		w = winw
		h = int32(int64(winw) * int64(texh) / int64(texw))
	}
	return (winw - w) / 2, (winh - h) / 2, w, h
}

// draw uploads pix (RGBA) to the texture, then shows it.
func (w *window) draw(pix []byte) {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(w.prog)
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w.texw, w.texh, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pix[0]))
	gl.BindVertexArray(w.vao)
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_INT, nil)

	w.GLSwap()
}

func (w *window) Close() error {
	if w.context != nil {
		sdl.GLDeleteContext(w.context)
	}
	err := w.Destroy()
	sdl.Quit()
	return err
}

// Columns are position and texture coordinates.
// Rows are the quad vertices in clockwise order.
var vertices = []float32{
	// x, y, z, s, t
	1.0, 1.0, 0, 1, 0, // top right
	1.0, -1.0, 0, 1, 1, // bottom right
	-1.0, -1.0, 0, 0, 1, // bottom left
	-1.0, 1.0, 0, 0, 0, // top left
}

var indices = []uint32{
	0, 1, 3,
	1, 2, 3,
}
