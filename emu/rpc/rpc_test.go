package rpc

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nx/emu"
	"nx/emu/log"
)

type fakeEmu struct {
	mu     sync.Mutex
	calls  []string
	paused bool
}

func (fe *fakeEmu) record(call string) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.calls = append(fe.calls, call)
}

func (fe *fakeEmu) Calls() []string {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return append([]string(nil), fe.calls...)
}

func (fe *fakeEmu) Reset() { fe.record("reset") }
func (fe *fakeEmu) Stop()  { fe.record("stop") }

func (fe *fakeEmu) SetPause(pause bool) {
	fe.record("pause")
	fe.mu.Lock()
	fe.paused = pause
	fe.mu.Unlock()
}

func (fe *fakeEmu) Status() emu.Status {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return emu.Status{Frame: 42, Digest: "abcd", Paused: fe.paused}
}

func TestClientServer(t *testing.T) {
	log.Disable()

	fe := &fakeEmu{}
	srv, err := NewServer(0, fe)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	client, err := NewClient(srv.Port())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	if err := client.SetPause(true); err != nil {
		t.Fatal(err)
	}
	st, err := client.Status()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(emu.Status{Frame: 42, Digest: "abcd", Paused: true}, st); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}

	if err := client.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := client.Stop(); err != nil {
		t.Fatal(err)
	}

	want := []string{"pause", "reset", "stop"}
	if diff := cmp.Diff(want, fe.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestTwoServers(t *testing.T) {
	log.Disable()

	// Each server has its own rpc registry.
	for range 2 {
		srv, err := NewServer(0, &fakeEmu{})
		if err != nil {
			t.Fatal(err)
		}
		srv.Close()
	}
}
