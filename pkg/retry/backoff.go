package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func (p Policy) backOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.MaxElapsedTime = p.MaxElapsedTime
	return exp
}

// NextDelay reports the delay that follows the given attempt, capped at
// the policy's maximum interval.
func (p Policy) NextDelay(attempt int) time.Duration {
	duration := float64(p.InitialInterval) * math.Pow(p.Multiplier, float64(attempt))
	if duration > float64(p.MaxInterval) {
		return p.MaxInterval
	}
	return time.Duration(duration)
}
