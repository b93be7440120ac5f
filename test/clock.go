package test

import (
	"sync/atomic"
	"time"
)

// Clock is a manually driven clock, safe for concurrent use.
type Clock struct {
	millis atomic.Int64
}

func NewClock(t time.Time) *Clock {
	c := &Clock{}
	c.Set(t)
	return c
}

// AtBucket returns a clock positioned at the start of bucket for the given unit.
func AtBucket(bucket int64, unit time.Duration) *Clock {
	return NewClock(time.UnixMilli(bucket * unit.Milliseconds()))
}

func (c *Clock) Now() time.Time {
	return time.UnixMilli(c.millis.Load())
}

func (c *Clock) Set(t time.Time) {
	c.millis.Store(t.UnixMilli())
}

func (c *Clock) Advance(d time.Duration) {
	c.millis.Add(d.Milliseconds())
}
