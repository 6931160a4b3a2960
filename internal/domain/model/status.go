package model

import "time"

// ContestStatus is where a contest sits relative to the current time.
type ContestStatus string

const (
	StatusUnknown  ContestStatus = "unknown"
	StatusUpcoming ContestStatus = "upcoming"
	StatusActive   ContestStatus = "active"
	StatusFinished ContestStatus = "finished"
)

// Status returns the contest's status at now. Contests missing either bound are unknown.
func (c Contest) Status(now time.Time) ContestStatus {
	if c.StartsAt.IsZero() || c.EndsAt.IsZero() {
		return StatusUnknown
	}
	switch {
	case now.Before(c.StartsAt):
		return StatusUpcoming
	case now.Before(c.EndsAt):
		return StatusActive
	default:
		return StatusFinished
	}
}
