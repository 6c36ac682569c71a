package screen

import (
	"github.com/veandco/go-sdl2/sdl"

	"nx/emu/log"
	"nx/hw/input"
)

type GameControllers struct {
	Guids map[string]*sdl.GameController         // GUID -> controller
	Ids   map[sdl.JoystickID]*sdl.GameController // joystick ID -> controller
}

// As soon as it's been created, update must be called for each controller event
// in order to remain in sync.
func NewGameControllers() *GameControllers {
	gcs := GameControllers{
		Guids: make(map[string]*sdl.GameController),
		Ids:   make(map[sdl.JoystickID]*sdl.GameController),
	}
	for i := range sdl.NumJoysticks() {
		if sdl.IsGameController(i) {
			c := sdl.GameControllerOpen(i)
			joy := c.Joystick()
			guid := sdl.JoystickGetGUIDString(joy.GUID())
			gcs.Guids[guid] = c
			id := joy.InstanceID()
			gcs.Ids[id] = c

			log.ModInput.DebugZ("found controller").
				Int("id", int(id)).
				String("guid", guid).
				End()
		}
	}
	return &gcs
}

func (gcs *GameControllers) Get(id sdl.JoystickID) *sdl.GameController {
	return gcs.Ids[id]
}

func (gcs *GameControllers) getByGUID(guid string) *sdl.GameController {
	return gcs.Guids[guid]
}

// readAxes sets the host axes from the left stick of any controller.
func (gcs *GameControllers) readAxes(host *input.HostState) {
	host.Axes = [input.NumAxes]int16{}
	for _, c := range gcs.Ids {
		x := c.Axis(sdl.CONTROLLER_AXIS_LEFTX)
		y := c.Axis(sdl.CONTROLLER_AXIS_LEFTY)
		if x != 0 || y != 0 {
			host.Axes[input.AxisX] = x
			host.Axes[input.AxisY] = y
			return
		}
	}
}

func (gcs *GameControllers) UpdateDevices(e *sdl.ControllerDeviceEvent) {
	switch e.Type {
	case sdl.CONTROLLERDEVICEADDED:
		c := sdl.GameControllerOpen(int(e.Which))
		guid := sdl.JoystickGetGUIDString(c.Joystick().GUID())
		id := c.Joystick().InstanceID()
		gcs.Guids[guid] = c
		gcs.Ids[id] = c

		log.ModInput.InfoZ("added controller").
			Int("id", int(id)).
			String("guid", guid).
			End()

	case sdl.CONTROLLERDEVICEREMOVED:
		c := gcs.Get(e.Which)
		if c == nil {
			log.ModInput.WarnZ("controller not found").
				Int("id", int(e.Which)).
				End()
			return
		}
		guid := sdl.JoystickGetGUIDString(c.Joystick().GUID())
		delete(gcs.Guids, guid)
		delete(gcs.Ids, e.Which)
		c.Close()

		log.ModInput.InfoZ("removed controller").
			Int("id", int(e.Which)).
			String("guid", guid).
			End()
	}
}

func (gcs *GameControllers) Close() {
	for _, c := range gcs.Guids {
		c.Close()
	}
	clear(gcs.Guids)
	clear(gcs.Ids)
}
