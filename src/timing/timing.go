// Package timing implements randomized delays and the cooperative wait
// primitives every macro step goes through.
package timing

import (
	"fmt"
	"time"
)

const (
	// Tick is the suspension quantum of cooperative sleeps and the polling
	// interval of Until/While.
	Tick = 50 * time.Millisecond

	// Moment is the short pause used between synthesized input events.
	Moment          = 100 * time.Millisecond
	MomentVariation = 0.2

	// Ensure is the longer pause given to the target application to react
	// to an input before the next one is sent.
	Ensure          = 300 * time.Millisecond
	EnsureVariation = 0.2

	DefaultVariation = 0.4
)

// randomSamples is the number of uniform draws averaged by Random.
const randomSamples = 100

// Clock abstracts wall time so waits can be driven by a fake in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is backed by the time package.
var SystemClock Clock = systemClock{}

// Random averages 100 draws of uniform, which must return values in [0,1).
// The result is bell-shaped around 0.5 by the central limit theorem but is
// not a true Gaussian; it stays in [0,1).
func Random(uniform func() float64) float64 {
	acc := 0.0
	for i := 0; i < randomSamples; i++ {
		acc += uniform()
	}
	result := acc / randomSamples
	if result < 0 || result >= 1 {
		panic(fmt.Sprintf("timing: random value %v out of [0,1)", result))
	}
	return result
}

// Jitter spreads period uniformly over period*(1-ratio/2) .. period*(1+ratio/2)
// according to r in [0,1). A zero ratio returns period unchanged.
func Jitter(period time.Duration, ratio float64, r float64) time.Duration {
	if period <= 0 {
		panic(fmt.Sprintf("timing: non-positive period %v", period))
	}
	if ratio < 0 || ratio >= 1 {
		panic(fmt.Sprintf("timing: variation ratio %v out of [0,1)", ratio))
	}
	if ratio == 0 {
		return period
	}
	variation := float64(period) * ratio
	return time.Duration(float64(period) - variation/2 + variation*r)
}
