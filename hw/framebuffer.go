package hw

import (
	"image"
	"image/color"
)

// Color is a 32-bit 0xAARRGGBB pixel value, not premultiplied.
type Color uint32

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: uint8(c >> 24)}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// ColorModel converts any color to a Color.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color(uint32(n.A)<<24 | uint32(n.R)<<16 | uint32(n.G)<<8 | uint32(n.B))
})

// A pixel write recorded for replay, off is the offset in the buffer.
type logWrite struct {
	off uint32
	c   Color
}

// Framebuffer is a double buffered pixel grid. Writes go to the back buffer,
// readers only ever see the front buffer, which is replaced by Swap.
//
// Swap exchanges buffers without copying. To keep the back buffer coherent
// with what has been drawn so far (units may only redraw what changed), the
// writes of the last completed frame are replayed onto the new back buffer
// by Sync, before the next frame starts writing.
type Framebuffer struct {
	width, height uint32

	front, back []Color

	log       []logWrite // writes to back since last swap
	overflow  bool       // log exceeded the buffer size, stop logging
	replay    []logWrite // writes to apply on back at next Sync
	replayAll bool       // back must be fully copied from front at next Sync
}

// NewFramebuffer allocates both buffers. Dimensions must have been validated
// by Config.Check.
func NewFramebuffer(width, height uint32) *Framebuffer {
	n := int(width) * int(height)
	return &Framebuffer{
		width:  width,
		height: height,
		front:  make([]Color, n),
		back:   make([]Color, n),
	}
}

func (fb *Framebuffer) Width() uint32  { return fb.width }
func (fb *Framebuffer) Height() uint32 { return fb.height }

// WritePixel writes c at (x, y) in the back buffer. Out of range coordinates
// return an *OutOfBoundsError and nothing is written.
func (fb *Framebuffer) WritePixel(x, y uint32, c Color) error {
	if x >= fb.width || y >= fb.height {
		return &OutOfBoundsError{X: x, Y: y, Width: fb.width, Height: fb.height}
	}
	off := y*fb.width + x
	fb.back[off] = c

	if !fb.overflow {
		if len(fb.log) >= len(fb.back) {
			fb.overflow = true
			fb.log = fb.log[:0]
		} else {
			fb.log = append(fb.log, logWrite{off: off, c: c})
		}
	}
	return nil
}

func (fb *Framebuffer) inBounds(x, y uint32) bool {
	return x < fb.width && y < fb.height
}

// Swap publishes the back buffer as the new front buffer, in O(1).
func (fb *Framebuffer) Swap() {
	fb.front, fb.back = fb.back, fb.front

	// What was logged is now in front and missing from back.
	fb.replayAll = fb.overflow
	fb.replay, fb.log = fb.log, fb.replay[:0]
	fb.overflow = false
}

// Sync brings the back buffer up to date with the front buffer, by replaying
// the writes of the last swapped frame. It must be called before the first
// write of a frame.
func (fb *Framebuffer) Sync() {
	switch {
	case fb.replayAll:
		copy(fb.back, fb.front)
	default:
		for _, w := range fb.replay {
			fb.back[w.off] = w.c
		}
	}
	fb.replay = fb.replay[:0]
	fb.replayAll = false
}

// Clear fills both buffers with c and forgets pending writes.
func (fb *Framebuffer) Clear(c Color) {
	for i := range fb.front {
		fb.front[i] = c
		fb.back[i] = c
	}
	fb.log = fb.log[:0]
	fb.replay = fb.replay[:0]
	fb.overflow = false
	fb.replayAll = false
}

// Front returns a read-only view of the last completed frame.
func (fb *Framebuffer) Front() View {
	return View{pix: fb.front, width: int(fb.width), height: int(fb.height)}
}

// View is a read-only view of a completed frame. It is also an image.Image.
//
// A View stays valid until the next call to AdvanceFrame returns; hosts that
// need the pixels for longer must copy them.
type View struct {
	pix           []Color
	width, height int
}

func (v View) Width() int  { return v.width }
func (v View) Height() int { return v.height }

// Pixel returns the color at (x, y), or 0 outside of the view.
func (v View) Pixel(x, y int) Color {
	if x < 0 || y < 0 || x >= v.width || y >= v.height {
		return 0
	}
	return v.pix[y*v.width+x]
}

// Row returns the pixels of row y. The returned slice must not be modified.
func (v View) Row(y int) []Color {
	return v.pix[y*v.width : (y+1)*v.width : (y+1)*v.width]
}

// AppendRGBA appends the view pixels to dst, 4 bytes per pixel in R, G, B, A
// order, row after row.
func (v View) AppendRGBA(dst []byte) []byte {
	for _, c := range v.pix {
		dst = append(dst, uint8(c>>16), uint8(c>>8), uint8(c), uint8(c>>24))
	}
	return dst
}

func (v View) ColorModel() color.Model { return ColorModel }

func (v View) Bounds() image.Rectangle { return image.Rect(0, 0, v.width, v.height) }

func (v View) At(x, y int) color.Color { return v.Pixel(x, y) }
