package event

import "time"

// Event is a community writing event owning zero or more word wars. Events
// are managed elsewhere; this service only reads them.
type Event struct {
	ID       string
	Title    string
	IsActive bool
	StartsAt time.Time
	EndsAt   time.Time
}

// IsOpenAt reports whether the event accepts word war activity at t.
func (e Event) IsOpenAt(t time.Time) bool {
	if !e.IsActive {
		return false
	}
	return !t.Before(e.StartsAt) && !t.After(e.EndsAt)
}
