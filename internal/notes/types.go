package notes

import "errors"

// DefaultKey is the key the record lives under.
const DefaultKey = "todo"

var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrEmptyNote       = errors.New("note text is required")
	ErrIndexOutOfRange = errors.New("note index out of range")

	// ErrNotLoaded blocks writes until the stored record has been read.
	ErrNotLoaded = errors.New("notes not loaded")
	// ErrCorruptRecord marks a stored record that does not decode. The raw
	// bytes are kept under the backup key before the list starts empty.
	ErrCorruptRecord = errors.New("stored record is unreadable")
	// ErrRecordNotCreated means no record existed and the empty one could
	// not be written. The empty list is still the true state.
	ErrRecordNotCreated = errors.New("empty record not created")
)

// Note is a single todo entry. The text is stored under "note" so records
// written by earlier versions of the app still decode.
type Note struct {
	ID   int    `json:"id"`
	Text string `json:"note"`
}

// Record is the persisted shape: {"notes":[...]}.
type Record struct {
	Notes []Note `json:"notes"`
}

// AddNoteInput is the input for adding a note through the API
type AddNoteInput struct {
	Note string `json:"note"`
}

// SwipeInput carries the horizontal displacement of a released drag
type SwipeInput struct {
	DX float64 `json:"dx"`
}

// SwipeResult reports what a released drag did to the row
type SwipeResult struct {
	ID      int    `json:"id"`
	State   string `json:"state"`
	Removed bool   `json:"removed"`
}
