// Package marker tracks the open/closed state of the current mark while the
// operator scrubs a recording. One Marker lives per source-video session.
package marker

// Span is a closed mark: a half-open frame range [Start, End) ready to be
// handed to the encoder.
type Span struct {
	Start int
	End   int
}

// Marker is a two-state machine: idle, or holding an open start frame.
// All methods are no-ops for inputs that do not fit the current state; an
// operator fumbling keys must never crash or corrupt the session.
type Marker struct {
	open  bool
	start int
}

// New returns a Marker in the idle state.
func New() *Marker {
	return &Marker{}
}

// MarkStart opens a mark at frame. Marking start while a mark is already
// open replaces the open boundary, so the operator can re-mark without
// closing first.
func (m *Marker) MarkStart(frame int) {
	m.open = true
	m.start = frame
}

// MarkEnd closes the open mark at frame and returns the completed span.
// It returns ok=false and leaves the state unchanged when no mark is open,
// or when frame does not advance past the open start (the mark stays open
// so the operator can pick a later end frame).
func (m *Marker) MarkEnd(frame int) (Span, bool) {
	if !m.open {
		return Span{}, false
	}
	if frame <= m.start {
		return Span{}, false
	}
	m.open = false
	return Span{Start: m.start, End: frame}, true
}

// Open reports the start frame of the open mark, if any.
func (m *Marker) Open() (int, bool) {
	return m.start, m.open
}

// Idle reports whether no mark is open. Delete-last is only legal while idle.
func (m *Marker) Idle() bool {
	return !m.open
}
