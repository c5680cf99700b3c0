package random

import (
	"math"
	"math/rand"
	"time"
)

// Randomize applies ±percent randomization to value
// Example: Randomize(100, 1.0) returns value in range [99, 101]
func Randomize(value float64, percent float64) float64 {
	if percent <= 0 {
		return value
	}

	variance := value * (percent / 100.0)

	// random offset in range [-variance, +variance]
	offset := (rand.Float64()*2 - 1) * variance

	result := value + offset
	return math.Round(result*100) / 100
}

// Jitter spreads d by ±percent so that retries from many clients do not line up.
// The result is never negative.
func Jitter(d time.Duration, percent float64) time.Duration {
	if d <= 0 {
		return 0
	}
	jittered := time.Duration(Randomize(float64(d), percent))
	if jittered < 0 {
		return 0
	}
	return jittered
}

// Backoff returns the linear retry delay for the given attempt (1-based) with jitter
func Backoff(base time.Duration, attempt int, percent float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return Jitter(base*time.Duration(attempt), percent)
}
