// Package tty is a terminal host of the emulator. It draws frames with
// 24-bit colored half block characters and reads keys from the raw terminal.
package tty

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"nx/emu/log"
	"nx/hw"
	"nx/hw/input"
)

// TTY implements emu.Output on the process terminal.
type TTY struct {
	in       *os.File
	out      *bufio.Writer
	fd       int
	oldState *term.State

	keyc  chan []byte
	errc  chan error
	evs   []keyEvent
	held  holder
	frame []byte
}

// New puts the terminal connected to in in raw mode. Frames are written to
// out, which must be connected to the same terminal.
func New(in, out *os.File) (*TTY, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", in.Name())
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}

	t := &TTY{
		in:       in,
		out:      bufio.NewWriterSize(out, 1<<16),
		fd:       int(out.Fd()),
		oldState: old,
		keyc:     make(chan []byte, 16),
		errc:     make(chan error, 1),
	}
	// Clear screen and hide cursor.
	t.out.WriteString(csi + "2J" + csi + "?25l")
	go t.read()
	return t, nil
}

// read forwards terminal input to the emulator loop. It stays blocked in
// Read until the process exits.
func (t *TTY) read() {
	for {
		buf := make([]byte, 64)
		n, err := t.in.Read(buf)
		if n > 0 {
			t.keyc <- buf[:n]
		}
		if err != nil {
			t.errc <- err
			return
		}
	}
}

func (t *TTY) Poll(host *input.HostState) bool {
loop:
	for {
		select {
		case buf := <-t.keyc:
			t.evs = parseKeys(buf, t.evs[:0])
			for _, ev := range t.evs {
				if ev.quit {
					return false
				}
				t.held.press(ev.button)
			}
		case err := <-t.errc:
			log.ModInput.WarnZ("terminal input closed").Error("err", err).End()
			return false
		default:
			break loop
		}
	}
	t.held.tick(host)
	return true
}

func (t *TTY) Render(v hw.View) error {
	cols, rows, err := term.GetSize(t.fd)
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}
	// Leave the last row free so that the terminal doesn't scroll.
	t.frame = AppendFrame(t.frame[:0], v, cols, rows-1)
	if _, err := t.out.Write(t.frame); err != nil {
		return err
	}
	return t.out.Flush()
}

// Close restores the terminal state.
func (t *TTY) Close() error {
	t.out.WriteString(resetAttrs + csi + "?25h" + csi + "2J" + cursorHome)
	t.out.Flush()
	return term.Restore(int(t.in.Fd()), t.oldState)
}
