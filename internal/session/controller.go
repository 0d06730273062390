// Package session implements the playback controller: the single cooperative
// loop state that turns operator events into marks, encode jobs, and ledger
// mutations. It owns no goroutines of its own; the TUI drives it one cycle
// at a time and the encode manager's poll is called every cycle.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/servecut/servecut/internal/clips"
	"github.com/servecut/servecut/internal/encode"
	"github.com/servecut/servecut/internal/ledger"
	"github.com/servecut/servecut/internal/marker"
)

// Event is one discrete operator input. Key bindings live in the TUI; the
// controller only sees intents.
type Event int

const (
	EventNone Event = iota
	EventMarkStart
	EventMarkEnd
	EventDeleteLast
	EventSeekBack
	EventFast
	EventQuit
)

// Options tunes playback behavior.
type Options struct {
	FastMultiplier int
	SeekBackFrames int
	FastRevert     time.Duration
}

// Controller multiplexes playback, marking, and background encode jobs for
// one source video. Not safe for concurrent use: one loop, one owner.
type Controller struct {
	src    Source
	marks  *marker.Marker
	jobs   *encode.Manager
	store  *ledger.Store
	logger *slog.Logger

	player     string
	sessionID  int
	sourcePath string
	outputDir  string
	opts       Options

	fast       bool
	lastFastAt time.Time
	ended      bool

	// Serve id of the most recently submitted segment. Delete-last only
	// ever removes this one clip, so pressing delete twice without a new
	// mark in between is a no-op the second time.
	lastID int

	now func() time.Time
}

// New builds a Controller for one marking session. outputDir is the
// player/session clip directory that allocation and delete scan.
func New(src Source, sourcePath string, jobs *encode.Manager, store *ledger.Store, player string, sessionID int, outputDir string, opts Options, logger *slog.Logger) *Controller {
	if opts.FastMultiplier < 1 {
		opts.FastMultiplier = 1
	}
	if opts.SeekBackFrames < 1 {
		opts.SeekBackFrames = 1
	}
	return &Controller{
		src:        src,
		marks:      marker.New(),
		jobs:       jobs,
		store:      store,
		logger:     logger,
		player:     player,
		sessionID:  sessionID,
		sourcePath: sourcePath,
		outputDir:  outputDir,
		opts:       opts,
		now:        time.Now,
	}
}

// Advance moves playback forward one cycle, skipping extra frames while fast
// mode is active. Returns false once the end of the stream is reached.
func (c *Controller) Advance() bool {
	if c.ended {
		return false
	}
	if !c.src.Advance() {
		c.ended = true
		return false
	}
	if c.fast {
		c.src.Skip(c.opts.FastMultiplier - 1)
	}
	return true
}

// Handle dispatches one operator event and returns a status line for the
// operator, or "" when there is nothing to say. Invalid sequences are
// deliberate no-ops, never errors.
func (c *Controller) Handle(ev Event) string {
	now := c.now()

	if ev == EventFast {
		c.fast = true
		c.lastFastAt = now
	} else if c.fast && now.Sub(c.lastFastAt) > c.opts.FastRevert {
		// Fast mode is hold-to-activate: it lapses as soon as a cycle
		// passes without the fast key.
		c.fast = false
	}

	switch ev {
	case EventMarkStart:
		frame := c.src.Pos()
		c.marks.MarkStart(frame)
		return fmt.Sprintf("mark open at frame %d (%.2fs)", frame, float64(frame)/c.src.FrameRate())

	case EventMarkEnd:
		return c.closeMark()

	case EventDeleteLast:
		return c.deleteLast()

	case EventSeekBack:
		target := c.src.Pos() - c.opts.SeekBackFrames
		c.src.Seek(target)
		c.ended = false
		return fmt.Sprintf("seek to frame %d", c.src.Pos())
	}
	return ""
}

func (c *Controller) closeMark() string {
	span, ok := c.marks.MarkEnd(c.src.Pos())
	if !ok {
		return ""
	}

	id, err := clips.NextID(c.outputDir)
	if err != nil {
		c.marks.MarkStart(span.Start)
		return fmt.Sprintf("allocate id: %v", err)
	}
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		c.marks.MarkStart(span.Start)
		return fmt.Sprintf("create clip dir: %v", err)
	}

	seg := ledger.Segment{
		Player:      c.player,
		ServeID:     id,
		SessionID:   c.sessionID,
		SourceVideo: c.sourcePath,
		OutputClip:  filepath.Join(c.outputDir, clips.FileName(id)),
		StartFrame:  span.Start,
		EndFrame:    span.End,
	}

	if _, err := c.jobs.Submit(seg, c.src.FrameRate()); err != nil {
		// Reopen the mark so the operator can close it again once a
		// job slot frees up.
		c.marks.MarkStart(span.Start)
		if errors.Is(err, encode.ErrTooManyJobs) {
			return "encoder busy, mark kept open"
		}
		return fmt.Sprintf("start encode: %v", err)
	}
	c.lastID = id
	return fmt.Sprintf("segment %s queued: frames %d..%d", clips.FormatID(id), span.Start, span.End)
}

func (c *Controller) deleteLast() string {
	if !c.marks.Idle() {
		return "close or clear the open mark before deleting"
	}
	// Harvesting a completing job here would race the rewrite below, so an
	// in-flight set blocks deletion outright.
	if c.jobs.InFlight() > 0 {
		return fmt.Sprintf("%d encode(s) still running, try again when they finish", c.jobs.InFlight())
	}

	if c.lastID == 0 {
		return "nothing to delete"
	}

	id, path, ok, err := clips.Last(c.outputDir)
	if err != nil {
		return fmt.Sprintf("scan clips: %v", err)
	}
	if !ok || id != c.lastID {
		// The last submitted segment never produced a file (failed
		// encode) or is already gone.
		c.lastID = 0
		return "nothing to delete"
	}

	if err := os.Remove(path); err != nil {
		return fmt.Sprintf("delete clip: %v", err)
	}
	if err := c.store.Delete(c.player, id, path); err != nil && !errors.Is(err, ledger.ErrRowNotFound) {
		return fmt.Sprintf("delete ledger row: %v", err)
	}

	c.lastID = 0
	if c.logger != nil {
		c.logger.Info("deleted last clip", "serve_id", id, "path", path)
	}
	return fmt.Sprintf("deleted segment %s", clips.FormatID(id))
}

// PollJobs harvests finished encodes. Called once per cycle whether or not
// an input event arrived.
func (c *Controller) PollJobs() []encode.Result {
	return c.jobs.Poll()
}

// Drain blocks until all in-flight encodes finish. Called once at quit.
func (c *Controller) Drain() []encode.Result {
	return c.jobs.Drain()
}

// FrameDelay is the pacing interval for one playback cycle at the current
// speed, never below one millisecond.
func (c *Controller) FrameDelay() time.Duration {
	fps := c.src.FrameRate()
	if fps <= 0 {
		return 33 * time.Millisecond
	}
	d := time.Duration(float64(time.Second) / fps)
	if c.fast {
		d /= time.Duration(c.opts.FastMultiplier)
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// Accessors for the view layer.

func (c *Controller) Pos() int              { return c.src.Pos() }
func (c *Controller) FrameCount() int       { return c.src.FrameCount() }
func (c *Controller) FrameRate() float64    { return c.src.FrameRate() }
func (c *Controller) Fast() bool            { return c.fast }
func (c *Controller) Ended() bool           { return c.ended }
func (c *Controller) InFlight() int         { return c.jobs.InFlight() }
func (c *Controller) OpenMark() (int, bool) { return c.marks.Open() }
