package event

import "time"

// Category identifies which append-only log an event belongs to.
type Category string

// Event categories. Each category keeps its own ordered history and is
// queried independently.
const (
	CategoryRFID   Category = "rfid"
	CategoryKeypad Category = "keypad"
	CategoryFace   Category = "face"
)

// Valid reports whether the category is one of the known logs.
func (c Category) Valid() bool {
	switch c {
	case CategoryRFID, CategoryKeypad, CategoryFace:
		return true
	}
	return false
}

// Event represents a single access or recognition occurrence.
//
// Subject carries the category-specific identifier: the tag UID for RFID
// events, the entered PIN for keypad events, the recognised user name for
// face events.
type Event struct {
	ID           string    `json:"id"`
	Category     Category  `json:"category"`
	Status       string    `json:"status"`
	Subject      string    `json:"subject,omitempty"`
	SourceDevice string    `json:"device,omitempty"`
	Timestamp    int64     `json:"timestamp"`
	Datetime     string    `json:"datetime"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter controls which events to return.
type Filter struct {
	Category Category // required: which log to read
	Limit    int      // default 10, max 200
}
