// Structure of the Timer model in Chime.

package entity

// Timer is a transient, server-announced countdown. It is never mutated
// after creation; it lives inside the broadcast payload and in a
// short-lived convenience cache.
type Timer struct {
	ID       string  `json:"id" redis:"id" valid:"-"`
	Name     string  `json:"name" redis:"name" valid:"-"`
	Duration float64 `json:"duration" redis:"duration" valid:"-"` // seconds
	EndTime  int64   `json:"endTime" redis:"end_time" valid:"-"`  // unix milliseconds
	Sound    string  `json:"sound" redis:"sound" valid:"-"`
	Active   bool    `json:"active" redis:"active" valid:"-"`
}

// SetTimerRequest is the body of the timer submission endpoint.
// Duration accepts any positive number of seconds, fractions included;
// positivity is checked in the timer validation.
type SetTimerRequest struct {
	Duration float64 `json:"duration" valid:"-"`
	Name     string  `json:"name" valid:"-"`
	Sound    string  `json:"sound" valid:"soundfile~Invalid sound,optional"`
}
