package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-faster/jx"

	"nx/hw/input"
)

// A Record is an entry of an input recording: the latch of a frame.
type Record struct {
	Frame   uint64
	Buttons uint8
	Axes    [input.NumAxes]int16
}

func (r *Record) Latch() input.Latch {
	return input.NewLatch(r.Buttons, r.Axes)
}

func (r *Record) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("frame")
	e.UInt64(r.Frame)
	e.FieldStart("buttons")
	e.UInt8(r.Buttons)
	e.FieldStart("axes")
	e.ArrStart()
	for _, v := range r.Axes {
		e.Int16(v)
	}
	e.ArrEnd()
	e.ObjEnd()
}

func (r *Record) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "frame":
			r.Frame, err = d.UInt64()
		case "buttons":
			r.Buttons, err = d.UInt8()
		case "axes":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(r.Axes) {
					return fmt.Errorf("too many axes")
				}
				v, err := d.Int16()
				r.Axes[i] = v
				i++
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
}

// A Recorder writes an input recording. Only the frames where the input
// changes are recorded.
type Recorder struct {
	w    io.Writer
	enc  jx.Encoder
	last  input.Latch
	frame uint64
	n     int
}

func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Record records the latch used for a frame. Frames must be recorded in
// increasing order.
func (rec *Recorder) Record(frame uint64, l input.Latch) error {
	if rec.n > 0 && frame <= rec.frame {
		return fmt.Errorf("frame %d recorded after frame %d", frame, rec.frame)
	}
	rec.frame = frame
	if rec.n > 0 && l == rec.last {
		return nil
	}
	r := Record{Frame: frame, Buttons: l.Buttons(), Axes: l.Axes()}
	rec.enc.Reset()
	r.encode(&rec.enc)
	if err := writeLine(rec.w, &rec.enc); err != nil {
		return err
	}
	rec.last = l
	rec.n++
	return nil
}

// ReadRecords reads a whole input recording.
func ReadRecords(r io.Reader) ([]Record, error) {
	var recs []Record
	err := scanLines(r, func(d *jx.Decoder) error {
		var rec Record
		if err := rec.decode(d); err != nil {
			return err
		}
		recs = append(recs, rec)
		return nil
	})
	return recs, err
}

// A Player replays an input recording.
type Player struct {
	sc   *bufio.Scanner
	line int

	cur     input.Latch
	next    Record
	hasNext bool
}

// NewPlayer creates a player reading the recording from r.
func NewPlayer(r io.Reader) (*Player, error) {
	p := &Player{sc: bufio.NewScanner(r)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Player) advance() error {
	p.hasNext = false
	for p.sc.Scan() {
		p.line++
		if len(p.sc.Bytes()) == 0 {
			continue
		}
		var r Record
		if err := r.decode(jx.DecodeBytes(p.sc.Bytes())); err != nil {
			return fmt.Errorf("input recording, line %d: %w", p.line, err)
		}
		p.next = r
		p.hasNext = true
		return nil
	}
	return p.sc.Err()
}

// Latch returns the input of the given frame: the latch of the last record
// at or before that frame. Frames must be requested in increasing order.
func (p *Player) Latch(frame uint64) (input.Latch, error) {
	for p.hasNext && p.next.Frame <= frame {
		p.cur = p.next.Latch()
		if err := p.advance(); err != nil {
			return p.cur, err
		}
	}
	return p.cur, nil
}

// Done reports whether all records have been played.
func (p *Player) Done() bool { return !p.hasNext }
