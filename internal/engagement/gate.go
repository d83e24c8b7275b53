// Package engagement decides whether the channel has earned another automated
// reply. The allowance grows with the video's likes and the channel's
// subscribers, weighted by configurable powers.
package engagement

import "math"

// Threshold returns the number of replies the current engagement allows. The
// result saturates at math.MaxInt64 instead of wrapping.
func Threshold(likes, subscribers, likePower, subscribePower int64) int64 {
	return addSat(mulSat(likes, likePower), mulSat(subscribers, subscribePower))
}

// mulSat and addSat saturate on positive overflow. Negative operands are
// rejected by config validation and are not clamped.
func mulSat(a, b int64) int64 {
	if a > 0 && b > 0 && a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

func addSat(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// IsOpen reports whether another reply may be posted.
func IsOpen(replied, likes, subscribers, likePower, subscribePower int64) bool {
	return replied < Threshold(likes, subscribers, likePower, subscribePower)
}

// Decision is a gate evaluation captured for logging.
type Decision struct {
	Replied   int64
	Threshold int64
	Open      bool
}

// State returns "open" or "charging".
func (d Decision) State() string {
	if d.Open {
		return "open"
	}
	return "charging"
}

// Remaining is how many more replies fit under the threshold.
func (d Decision) Remaining() int64 {
	if !d.Open {
		return 0
	}
	return d.Threshold - d.Replied
}

// Evaluate computes the threshold and open flag together.
func Evaluate(replied, likes, subscribers, likePower, subscribePower int64) Decision {
	threshold := Threshold(likes, subscribers, likePower, subscribePower)
	return Decision{Replied: replied, Threshold: threshold, Open: replied < threshold}
}
