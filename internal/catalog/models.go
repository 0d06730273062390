package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Recording is one raw session video known to the catalog, with the probed
// metadata a marking session needs.
type Recording struct {
	ID         string
	Path       string
	SessionID  int
	FrameRate  float64
	FrameCount int
	Duration   float64
	Width      int
	Height     int
	ScannedAt  time.Time
}

// NewID returns a fresh recording id.
func NewID() string {
	return uuid.NewString()
}
