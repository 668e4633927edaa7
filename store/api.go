package store

// Cursors maps dialog id to the id of the last processed message in that dialog.
type Cursors map[int64]int64

type IResumeStore interface {
	// Load returns persisted cursors. Missing or unparsable state yields an empty map, never an error.
	Load() Cursors

	// Save merges `update` over the persisted cursors (update wins per key) and writes them back.
	Save(update Cursors) error

	Close() error
}
