// Structure of the alarm Sound model in Chime.

package entity

// Sound is one selectable alarm sound served by the catalog.
type Sound struct {
	Value string `json:"value"` // filename, also the playback selector
	Label string `json:"label"`
}
