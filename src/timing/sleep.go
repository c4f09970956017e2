package timing

import (
	"math/rand/v2"
	"time"
)

// Scheduler carries the clock and randomness used by the waits.
type Scheduler struct {
	Clock   Clock
	Uniform func() float64
}

// NewScheduler returns a Scheduler on the system clock.
func NewScheduler() *Scheduler {
	return &Scheduler{Clock: SystemClock, Uniform: rand.Float64}
}

func (s *Scheduler) jitter(period time.Duration, ratio float64) time.Duration {
	if ratio == 0 {
		return Jitter(period, 0, 0)
	}
	return Jitter(period, ratio, Random(s.Uniform))
}

// SleepRandom waits a jittered period, yielding before each Tick-long nap
// and once more before the final remainder, so even a period shorter than a
// Tick yields to the driver exactly once.
func (s *Scheduler) SleepRandom(y Yield, period time.Duration, ratio float64) error {
	limit := s.Clock.Now().Add(s.jitter(period, ratio))
	now := s.Clock.Now()
	for now.Before(limit.Add(-Tick)) {
		if err := y(); err != nil {
			return err
		}
		s.Clock.Sleep(Tick)
		now = s.Clock.Now()
	}
	if err := y(); err != nil {
		return err
	}
	if rest := limit.Sub(now); rest > 0 {
		s.Clock.Sleep(rest)
	}
	return nil
}

// Sleep waits exactly period.
func (s *Scheduler) Sleep(y Yield, period time.Duration) error {
	return s.SleepRandom(y, period, 0)
}

func (s *Scheduler) SleepMoment(y Yield) error {
	return s.SleepRandom(y, Moment, MomentVariation)
}

func (s *Scheduler) SleepEnsure(y Yield) error {
	return s.SleepRandom(y, Ensure, EnsureVariation)
}

// BlockRandom is the non-cooperative form of SleepRandom. It is used by code
// that runs between suspension points, such as key chords.
func (s *Scheduler) BlockRandom(period time.Duration, ratio float64) {
	s.Clock.Sleep(s.jitter(period, ratio))
}

func (s *Scheduler) BlockMoment() {
	s.BlockRandom(Moment, MomentVariation)
}
