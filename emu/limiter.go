package emu

import "time"

// Limiter limits the rate of an event, typically the emulation of frames on
// hosts without vsync.
type Limiter struct {
	period time.Duration
	next   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func NewLimiter(fps int) *Limiter {
	lim := &Limiter{
		now:   time.Now,
		sleep: time.Sleep,
	}
	lim.SetLimit(fps)
	return lim
}

// SetLimit changes the rate, in events per second.
func (lim *Limiter) SetLimit(fps int) {
	lim.period = time.Second / time.Duration(max(fps, 1))
	lim.next = time.Time{}
}

// Wait blocks until the next event is due. When late by more than a
// period, the schedule restarts from now rather than trying to catch up.
func (lim *Limiter) Wait() {
	now := lim.now()
	if lim.next.IsZero() || now.Sub(lim.next) > lim.period {
		lim.next = now.Add(lim.period)
		return
	}
	if d := lim.next.Sub(now); d > 0 {
		lim.sleep(d)
	}
	lim.next = lim.next.Add(lim.period)
}
