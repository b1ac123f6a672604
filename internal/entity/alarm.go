// Structure of the client-side Alarm model in Chime.

package entity

import "time"

// Alarm is a client-held scheduled notification, created from a manual
// entry or a received timer broadcast. Alarms are never edited in place,
// an edit is a remove followed by a re-add under a fresh id.
type Alarm struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	At    time.Time `json:"at"`
	Sound string    `json:"sound"`
}
