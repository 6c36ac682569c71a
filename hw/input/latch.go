// Package input defines the logical inputs of an emulated machine and the
// per-frame latch through which execution units observe them.
package input

import "strings"

//go:generate go tool stringer -type Button -trimprefix Button

// A Button identifies a logical digital input.
type Button uint8

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart

	NumButtons
)

// ParseButton returns the button with the given name, case insensitive.
func ParseButton(name string) (Button, bool) {
	for b := range NumButtons {
		if strings.EqualFold(b.String(), name) {
			return b, true
		}
	}
	return NumButtons, false
}

// An Axis identifies a logical analog input.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY

	NumAxes
)

// HostState is the live input state reported by the host shell. Hosts update
// it from their event loop, the core never reads it directly.
type HostState struct {
	Buttons [NumButtons]bool
	Axes    [NumAxes]int16
}

func (hs *HostState) Press(b Button, pressed bool) {
	if b < NumButtons {
		hs.Buttons[b] = pressed
	}
}

func (hs *HostState) Clear() {
	*hs = HostState{}
}

// A Latch is an immutable snapshot of the host input state, taken once per
// frame. Being a small value type, every step receives its own copy.
type Latch struct {
	buttons uint8
	axes    [NumAxes]int16
}

// Capture snapshots the host input state. host is not modified.
func Capture(host *HostState) Latch {
	var l Latch
	for b, pressed := range host.Buttons {
		if pressed {
			l.buttons |= 1 << b
		}
	}
	l.axes = host.Axes
	return l
}

// NewLatch builds a latch from a button bitmask (bit n set means Button(n) is
// pressed) and axis values. Used to replay recorded input.
func NewLatch(buttons uint8, axes [NumAxes]int16) Latch {
	return Latch{buttons: buttons, axes: axes}
}

func (l Latch) Pressed(b Button) bool {
	return b < NumButtons && l.buttons&(1<<b) != 0
}

// Buttons returns the button bitmask.
func (l Latch) Buttons() uint8 { return l.buttons }

func (l Latch) Axis(a Axis) int16 {
	if a >= NumAxes {
		return 0
	}
	return l.axes[a]
}

func (l Latch) Axes() [NumAxes]int16 { return l.axes }
