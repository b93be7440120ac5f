package cache

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// quantizer turns wall-clock time into buckets of one unit each. It is the
// only place the engine reads the clock. A clock moving backwards is not
// handled: entries simply look younger than they are.
type quantizer struct {
	unitMillis int64
	clock      Clock
}

func newQuantizer(unit time.Duration, clock Clock) quantizer {
	return quantizer{unitMillis: unit.Milliseconds(), clock: clock}
}

func (q quantizer) current() int64 {
	return q.clock.Now().UnixMilli() / q.unitMillis
}

func (q quantizer) due(bucket int64) bool {
	return q.current() >= bucket
}
