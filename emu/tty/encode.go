package tty

import (
	"strconv"

	"nx/hw"
)

const (
	csi        = "\x1b["
	cursorHome = csi + "H"
	resetAttrs = csi + "0m"
	upperHalf  = "▀"
)

// AppendFrame appends to dst the ANSI escape sequences drawing v in a
// terminal area of cols x rows cells. Each cell shows 2 vertically stacked
// pixels, with the upper half block character colored with 24-bit
// foreground (top pixel) and background (bottom pixel) colors. The view is
// scaled down with nearest-neighbor sampling to fit the area, keeping its
// aspect ratio.
func AppendFrame(dst []byte, v hw.View, cols, rows int) []byte {
	w, h := fit(v.Width(), v.Height(), cols, rows*2)
	if w == 0 || h == 0 {
		return dst
	}

	dst = append(dst, cursorHome...)
	for cy := 0; cy < (h+1)/2; cy++ {
		var fg, bg hw.Color
		first := true
		for cx := range w {
			top := sample(v, cx, 2*cy, w, h)
			bot := top
			if 2*cy+1 < h {
				bot = sample(v, cx, 2*cy+1, w, h)
			}
			if first || top != fg {
				dst = appendColor(dst, 38, top)
				fg = top
			}
			if first || bot != bg {
				dst = appendColor(dst, 48, bot)
				bg = bot
			}
			first = false
			dst = append(dst, upperHalf...)
		}
		dst = append(dst, resetAttrs...)
		dst = append(dst, "\r\n"...)
	}
	return dst
}

// fit returns the largest size with the aspect ratio of (w, h) fitting in
// (maxw, maxh), never larger than (w, h).
func fit(w, h, maxw, maxh int) (int, int) {
	if w <= 0 || h <= 0 || maxw <= 0 || maxh <= 0 {
		return 0, 0
	}
	if w <= maxw && h <= maxh {
		return w, h
	}
	if w*maxh > h*maxw {
		return maxw, max(h*maxw/w, 1)
	}
	return max(w*maxh/h, 1), maxh
}

func sample(v hw.View, x, y, w, h int) hw.Color {
	return v.Pixel(x*v.Width()/w, y*v.Height()/h)
}

// appendColor appends SGR sequence to set the foreground (38) or background
// (48) color.
func appendColor(dst []byte, sgr int, c hw.Color) []byte {
	dst = append(dst, csi...)
	dst = strconv.AppendInt(dst, int64(sgr), 10)
	dst = append(dst, ";2;"...)
	dst = strconv.AppendUint(dst, uint64(c>>16&0xff), 10)
	dst = append(dst, ';')
	dst = strconv.AppendUint(dst, uint64(c>>8&0xff), 10)
	dst = append(dst, ';')
	dst = strconv.AppendUint(dst, uint64(c&0xff), 10)
	return append(dst, 'm')
}
