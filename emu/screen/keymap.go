package screen

import (
	"github.com/veandco/go-sdl2/sdl"

	"nx/hw/input"
)

// KeyMap maps host inputs to the logical buttons.
type KeyMap struct {
	Up     Code `toml:"up"`
	Down   Code `toml:"down"`
	Left   Code `toml:"left"`
	Right  Code `toml:"right"`
	A      Code `toml:"a"`
	B      Code `toml:"b"`
	Select Code `toml:"select"`
	Start  Code `toml:"start"`
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     Key(sdl.SCANCODE_UP),
		Down:   Key(sdl.SCANCODE_DOWN),
		Left:   Key(sdl.SCANCODE_LEFT),
		Right:  Key(sdl.SCANCODE_RIGHT),
		A:      Key(sdl.SCANCODE_X),
		B:      Key(sdl.SCANCODE_Z),
		Select: Key(sdl.SCANCODE_RSHIFT),
		Start:  Key(sdl.SCANCODE_RETURN),
	}
}

// Codes returns the codes indexed by button.
func (km *KeyMap) Codes() [input.NumButtons]Code {
	return [input.NumButtons]Code{
		input.ButtonUp:     km.Up,
		input.ButtonDown:   km.Down,
		input.ButtonLeft:   km.Left,
		input.ButtonRight:  km.Right,
		input.ButtonA:      km.A,
		input.ButtonB:      km.B,
		input.ButtonSelect: km.Select,
		input.ButtonStart:  km.Start,
	}
}

// threshold for joystick axis to be considered as 'pressed'.
// goes from -32768 to 32767
const JoyAxisThreshold = 32000

// readButtons sets the host buttons from the keyboard and controllers state.
func readButtons(host *input.HostState, codes *[input.NumButtons]Code, keystate []uint8, gcs *GameControllers) {
	for b, code := range codes {
		pressed := false
		switch code.Type {
		case KeyboardCtrl:
			pressed = int(code.Scancode) < len(keystate) && keystate[code.Scancode] != 0
		case ButtonCtrl:
			if ctrl := gcs.getByGUID(code.CtrlGUID); ctrl != nil {
				pressed = ctrl.Button(code.CtrlButton) != 0
			}
		case AxisCtrl:
			if ctrl := gcs.getByGUID(code.CtrlGUID); ctrl != nil {
				v := ctrl.Axis(code.CtrlAxis)
				pressed = code.CtrlAxisDir > 0 && v >= JoyAxisThreshold ||
					code.CtrlAxisDir < 0 && v <= -JoyAxisThreshold
			}
		}
		host.Press(input.Button(b), pressed)
	}
}
