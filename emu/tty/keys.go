package tty

import "nx/hw/input"

// Terminals only report key presses, so a key is held for holdFrames polls
// after the last time it's been seen.
const holdFrames = 8

type keyEvent struct {
	button input.Button
	quit   bool
}

// parseKeys decodes the terminal input bytes in buf. Escape sequences of
// arrow keys are recognized, a lone escape byte quits, as do 'q' and ctrl-c.
// Unknown bytes are ignored.
func parseKeys(buf []byte, dst []keyEvent) []keyEvent {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		switch b {
		case 0x1b:
			if i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
				if btn, ok := arrows[buf[i+2]]; ok {
					dst = append(dst, keyEvent{button: btn})
				}
				i += 2
				continue
			}
			dst = append(dst, keyEvent{quit: true})
		case 'q', 'Q', 0x03:
			dst = append(dst, keyEvent{quit: true})
		default:
			if btn, ok := keys[b]; ok {
				dst = append(dst, keyEvent{button: btn})
			}
		}
	}
	return dst
}

var arrows = map[byte]input.Button{
	'A': input.ButtonUp,
	'B': input.ButtonDown,
	'C': input.ButtonRight,
	'D': input.ButtonLeft,
}

var keys = map[byte]input.Button{
	'w':  input.ButtonUp,
	's':  input.ButtonDown,
	'a':  input.ButtonLeft,
	'd':  input.ButtonRight,
	'x':  input.ButtonA,
	'z':  input.ButtonB,
	'\t': input.ButtonSelect,
	'\r': input.ButtonStart,
	'\n': input.ButtonStart,
}

// holder keeps the pressed state of the buttons.
type holder [input.NumButtons]int

func (h *holder) press(b input.Button) { h[b] = holdFrames }

// tick updates host with the held buttons and ages them by one poll.
func (h *holder) tick(host *input.HostState) {
	for b := range h {
		host.Press(input.Button(b), h[b] > 0)
		if h[b] > 0 {
			h[b]--
		}
	}
}
