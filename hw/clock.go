package hw

// Clock counts the virtual cycles elapsed since power-on and enforces the
// per-frame cycle budget.
//
// A frame is given cyclesPerFrame plus the balance left by the previous one.
// Steps can't be interrupted so the last step of a frame may overshoot the
// budget; the overshoot is carried as a negative balance, which keeps the
// long run average at exactly cyclesPerFrame per frame. A frame ended early by
// a boundary signal doesn't carry its unused cycles.
type Clock struct {
	cyclesPerFrame int64

	total   uint64 // cycles since power-on
	balance int64  // <= 0

	// frame being run
	open   bool
	budget int64
	used   int64
}

func newClock(cyclesPerFrame uint32) Clock {
	return Clock{cyclesPerFrame: int64(cyclesPerFrame)}
}

func (c *Clock) reset() {
	*c = newClock(uint32(c.cyclesPerFrame))
}

// openFrame starts a new frame. It returns false if a frame was already open, in
// which case it is resumed.
func (c *Clock) openFrame() bool {
	if c.open {
		return false
	}
	c.open = true
	c.budget = c.cyclesPerFrame + c.balance
	c.used = 0
	return true
}

func (c *Clock) exhausted() bool {
	return c.used >= c.budget
}

func (c *Clock) consume(cycles uint32) {
	c.used += int64(cycles)
	c.total += uint64(cycles)
}

func (c *Clock) closeFrame() {
	c.balance = min(c.budget-c.used, 0)
	c.open = false
}

// Total returns the number of cycles elapsed since power-on.
func (c *Clock) Total() uint64 { return c.total }

// Balance returns the cycles owed by the next frame, as a negative number.
func (c *Clock) Balance() int64 { return c.balance }

// CyclesPerFrame returns the nominal frame budget.
func (c *Clock) CyclesPerFrame() uint32 { return uint32(c.cyclesPerFrame) }
