package session

import "github.com/servecut/servecut/internal/encode"

// Source is a frame-accurate position over one recording: sequential
// advance, skip-ahead for fast playback, and absolute seek for rewind.
// Decoding and display are external concerns; the controller only needs the
// clock.
type Source interface {
	FrameRate() float64
	FrameCount() int
	Pos() int
	Advance() bool
	Skip(n int) bool
	Seek(frame int)
}

// Clock is a Source backed by probed metadata. Pos is the index of the frame
// currently shown, in [0, FrameCount).
type Clock struct {
	info *encode.SourceInfo
	pos  int
}

// NewClock returns a Clock positioned at frame 0.
func NewClock(info *encode.SourceInfo) *Clock {
	return &Clock{info: info}
}

func (c *Clock) FrameRate() float64 { return c.info.FrameRate }
func (c *Clock) FrameCount() int    { return c.info.FrameCount }
func (c *Clock) Pos() int           { return c.pos }

// Advance moves to the next frame, returning false at end of stream.
func (c *Clock) Advance() bool {
	if c.pos+1 >= c.info.FrameCount {
		return false
	}
	c.pos++
	return true
}

// Skip jumps ahead n frames without "decoding" the intermediates, the way
// fast playback grabs frames. Returns false when the stream ends first.
func (c *Clock) Skip(n int) bool {
	if c.pos+n >= c.info.FrameCount {
		c.pos = c.info.FrameCount - 1
		return false
	}
	c.pos += n
	return true
}

// Seek sets the absolute position, clamped to the stream bounds.
func (c *Clock) Seek(frame int) {
	if frame < 0 {
		frame = 0
	}
	if frame >= c.info.FrameCount {
		frame = c.info.FrameCount - 1
	}
	c.pos = frame
}
