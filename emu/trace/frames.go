// Package trace reads and writes JSON-lines files describing emulation
// runs: per-frame traces and input recordings.
package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-faster/jx"

	"nx/hw"
)

// A Frame is a trace entry, describing a completed frame.
type Frame struct {
	Frame    uint64
	Cycles   uint64
	Boundary bool
	Balance  int64
	Dropped  int
	Digest   string
}

// NewFrame builds the trace entry of a frame result.
func NewFrame(res hw.FrameResult, balance int64, digest string) Frame {
	return Frame{
		Frame:    res.Frame,
		Cycles:   res.CyclesConsumed,
		Boundary: res.BoundaryReached,
		Balance:  balance,
		Dropped:  res.DroppedWrites,
		Digest:   digest,
	}
}

func (f *Frame) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("frame")
	e.UInt64(f.Frame)
	e.FieldStart("cycles")
	e.UInt64(f.Cycles)
	e.FieldStart("boundary")
	e.Bool(f.Boundary)
	e.FieldStart("balance")
	e.Int64(f.Balance)
	e.FieldStart("dropped")
	e.Int(f.Dropped)
	e.FieldStart("digest")
	e.Str(f.Digest)
	e.ObjEnd()
}

func (f *Frame) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "frame":
			f.Frame, err = d.UInt64()
		case "cycles":
			f.Cycles, err = d.UInt64()
		case "boundary":
			f.Boundary, err = d.Bool()
		case "balance":
			f.Balance, err = d.Int64()
		case "dropped":
			f.Dropped, err = d.Int()
		case "digest":
			f.Digest, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
}

// Writer writes frame traces, one JSON object per line.
type Writer struct {
	w   io.Writer
	enc jx.Encoder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (tw *Writer) WriteFrame(f Frame) error {
	tw.enc.Reset()
	f.encode(&tw.enc)
	return writeLine(tw.w, &tw.enc)
}

func writeLine(w io.Writer, enc *jx.Encoder) error {
	buf := append(enc.Bytes(), '\n')
	_, err := w.Write(buf)
	return err
}

// ReadFrames reads a whole frame trace.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var frames []Frame
	err := scanLines(r, func(d *jx.Decoder) error {
		var f Frame
		if err := f.decode(d); err != nil {
			return err
		}
		frames = append(frames, f)
		return nil
	})
	return frames, err
}

// scanLines calls fn with a decoder for each non-empty line of r.
func scanLines(r io.Reader, fn func(*jx.Decoder) error) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := fn(jx.DecodeBytes(sc.Bytes())); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}

// Diverge returns the index of the first entry that differs between a and b,
// or -1 if they are identical.
func Diverge(a, b []Frame) int {
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	return -1
}
