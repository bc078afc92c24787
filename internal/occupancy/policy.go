package occupancy

import (
	"fmt"
	"strings"
)

// Policy decides what happens to a batch containing invalid bookings.
type Policy int

const (
	// PolicyFailFast rejects the whole batch at the first invalid booking.
	PolicyFailFast Policy = iota
	// PolicyCollect expands every valid booking and reports all invalid
	// ones together in an *InvalidRecordsError.
	PolicyCollect
	// PolicySkipInverted expands inverted ranges to zero rows. Missing
	// timestamps still fail the batch.
	PolicySkipInverted
)

func (p Policy) String() string {
	switch p {
	case PolicyFailFast:
		return "fail"
	case PolicyCollect:
		return "collect"
	case PolicySkipInverted:
		return "skip"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts fail, collect or skip. An empty string is fail.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "fail-fast", "failfast":
		return PolicyFailFast, nil
	case "collect":
		return PolicyCollect, nil
	case "skip", "skip-inverted":
		return PolicySkipInverted, nil
	default:
		return PolicyFailFast, fmt.Errorf("unknown occupancy policy %q", s)
	}
}
