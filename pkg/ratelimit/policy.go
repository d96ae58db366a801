// Package ratelimit holds the client's side of the upstream's implicit
// request-rate budget: the batch throttle policy used by aggregation runs
// and an optional outbound request limiter.
//
// The upstream never advertises its ceiling; it just answers sustained
// bursts with 429s. The budget is respected through the group size and
// cooldown below, which makes them correctness-relevant configuration, not
// tuning knobs.
package ratelimit

import "time"

// Default throttle values. Empirically chosen against the public TourAPI;
// treat them as defaults, not as values with semantic significance.
const (
	DefaultGroupSize = 3
	DefaultCooldown  = 500 * time.Millisecond
)

// Policy is the injectable throttle for batched aggregation: at most
// GroupSize concurrent calls at once, with Cooldown between successive
// groups. Tests shrink Cooldown to zero to avoid wall-clock sleeps.
type Policy struct {
	GroupSize int
	Cooldown  time.Duration
}

// DefaultPolicy returns the production throttle policy.
func DefaultPolicy() Policy {
	return Policy{
		GroupSize: DefaultGroupSize,
		Cooldown:  DefaultCooldown,
	}
}

// normalized returns a copy with a sane group size.
func (p Policy) normalized() Policy {
	if p.GroupSize <= 0 {
		p.GroupSize = DefaultGroupSize
	}
	return p
}

// Partition splits n work items into consecutive index ranges of at most
// GroupSize each. Only the final group may be short.
func (p Policy) Partition(n int) [][2]int {
	p = p.normalized()

	var groups [][2]int
	for start := 0; start < n; start += p.GroupSize {
		end := start + p.GroupSize
		if end > n {
			end = n
		}
		groups = append(groups, [2]int{start, end})
	}
	return groups
}
