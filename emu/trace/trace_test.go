package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nx/hw"
	"nx/hw/input"
)

func TestWriteFrames(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	frames := []Frame{
		NewFrame(hw.FrameResult{Frame: 0, CyclesConsumed: 120, DroppedWrites: 2}, -20, "aa"),
		NewFrame(hw.FrameResult{Frame: 1, CyclesConsumed: 30, BoundaryReached: true}, 0, "bb"),
	}
	for _, f := range frames {
		if err := w.WriteFrame(f); err != nil {
			t.Fatal(err)
		}
	}

	want := `{"frame":0,"cycles":120,"boundary":false,"balance":-20,"dropped":2,"digest":"aa"}
{"frame":1,"cycles":30,"boundary":true,"balance":0,"dropped":0,"digest":"bb"}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}

	got, err := ReadFrames(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(frames, got); diff != "" {
		t.Errorf("ReadFrames mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFramesErrors(t *testing.T) {
	in := `{"frame":0,"cycles":1,"unknown":[1,2],"digest":"x"}

{"frame":"one"}
`
	_, err := ReadFrames(strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("got error %v, want an error at line 3", err)
	}
}

func TestDiverge(t *testing.T) {
	a := []Frame{{Frame: 0, Digest: "a"}, {Frame: 1, Digest: "b"}}
	b := []Frame{{Frame: 0, Digest: "a"}, {Frame: 1, Digest: "c"}}

	tests := []struct {
		name string
		a, b []Frame
		want int
	}{
		{"identical", a, a, -1},
		{"different", a, b, 1},
		{"shorter", a, a[:1], 1},
		{"empty", nil, nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diverge(tt.a, tt.b); got != tt.want {
				t.Errorf("Diverge() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecordReplay(t *testing.T) {
	idle := input.Latch{}
	right := input.NewLatch(1<<input.ButtonRight, [input.NumAxes]int16{})
	stick := input.NewLatch(1<<input.ButtonA, [input.NumAxes]int16{-32768, 1200})

	// Input for frames 0 to 7.
	latches := []input.Latch{idle, idle, right, right, right, stick, idle, idle}

	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	for i, l := range latches {
		if err := rec.Record(uint64(i), l); err != nil {
			t.Fatal(err)
		}
	}

	want := `{"frame":0,"buttons":0,"axes":[0,0]}
{"frame":2,"buttons":8,"axes":[0,0]}
{"frame":5,"buttons":16,"axes":[-32768,1200]}
{"frame":6,"buttons":0,"axes":[0,0]}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("recording mismatch (-want +got):\n%s", diff)
	}

	p, err := NewPlayer(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range latches {
		got, err := p.Latch(uint64(i))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("frame %d: latch = %+v, want %+v", i, got, want)
		}
	}
	if !p.Done() {
		t.Errorf("player not done after the last frame")
	}

	// Past the end, the last input stays.
	if got, _ := p.Latch(100); got != idle {
		t.Errorf("frame 100: latch = %+v, want idle", got)
	}
}

func TestRecorderOrder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	press := input.NewLatch(1<<input.ButtonB, [input.NumAxes]int16{})

	if err := rec.Record(4, input.Latch{}); err != nil {
		t.Fatal(err)
	}
	// Unchanged input is not written but still orders frames.
	if err := rec.Record(5, input.Latch{}); err != nil {
		t.Fatal(err)
	}
	for _, frame := range []uint64{1, 5} {
		if err := rec.Record(frame, press); err == nil {
			t.Errorf("Record(%d) after frame 5: got no error", frame)
		}
	}
	if err := rec.Record(6, press); err != nil {
		t.Fatal(err)
	}

	recs, err := ReadRecords(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{
		{Frame: 4},
		{Frame: 6, Buttons: 1 << input.ButtonB},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayerErrors(t *testing.T) {
	in := `{"frame":0,"buttons":0,"axes":[0,0]}
{"frame":3,"buttons":0,"axes":[0,0,0]}
`
	p, err := NewPlayer(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Latch(5); err == nil {
		t.Errorf("too many axes: got no error")
	}

	if _, err := NewPlayer(strings.NewReader(`{"buttons":"x"}`)); err == nil {
		t.Errorf("invalid buttons: got no error")
	}
}
