package encode

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/servecut/servecut/internal/ledger"
)

// ErrTooManyJobs reports a submit rejected by the optional in-flight cap.
var ErrTooManyJobs = errors.New("encode job cap reached")

// Committer receives the segment of every successfully encoded clip.
// *ledger.Store satisfies it.
type Committer interface {
	Append(ledger.Segment) error
}

// Job is one in-flight external encode tied 1:1 to a segment.
type Job struct {
	ID         string
	Segment    ledger.Segment
	LaunchedAt time.Time

	cmd  *exec.Cmd
	done chan error
}

// Result is the terminal outcome of one job, produced by Poll.
type Result struct {
	Job       *Job
	Committed bool
	Elapsed   time.Duration
	Err       error
}

// Manager owns the in-flight job set. It is not safe for concurrent use:
// the single playback loop is the only caller, which is what keeps ledger
// commits serialized.
type Manager struct {
	opts      Options
	maxJobs   int
	committer Committer
	logger    *slog.Logger
	inflight  []*Job
}

// NewManager returns a Manager with an optional cap on concurrent jobs.
// maxJobs <= 0 means unbounded, the default policy.
func NewManager(opts Options, maxJobs int, committer Committer, logger *slog.Logger) *Manager {
	return &Manager{
		opts:      opts,
		maxJobs:   maxJobs,
		committer: committer,
		logger:    logger,
	}
}

// InFlight returns the number of jobs not yet harvested.
func (m *Manager) InFlight() int {
	return len(m.inflight)
}

// Submit launches an external encode for seg and returns without waiting for
// it. The frame range is converted to a time range at the source frame rate.
func (m *Manager) Submit(seg ledger.Segment, fps float64) (*Job, error) {
	if m.maxJobs > 0 && len(m.inflight) >= m.maxJobs {
		return nil, ErrTooManyJobs
	}

	args := CutArgs(m.opts, seg.SourceVideo, seg.StartFrame, seg.EndFrame, fps, seg.OutputClip)
	cmd := exec.Command(m.opts.bin(), args...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start encode for %s: %w", seg.OutputClip, err)
	}

	job := &Job{
		ID:         uuid.NewString(),
		Segment:    seg,
		LaunchedAt: time.Now(),
		cmd:        cmd,
		done:       make(chan error, 1),
	}
	go func() {
		job.done <- cmd.Wait()
	}()

	m.inflight = append(m.inflight, job)
	if m.logger != nil {
		m.logger.Info("encode started",
			"job_id", job.ID,
			"serve_id", seg.ServeID,
			"output_clip", seg.OutputClip,
			"start_frame", seg.StartFrame,
			"end_frame", seg.EndFrame,
		)
	}
	return job, nil
}

// Poll harvests every job whose process has exited, without blocking on the
// rest. A job succeeds when the process exited zero and the output file
// exists; its segment is then appended to the ledger. Anything else is a
// failure: logged, partial output unlinked, never retried.
func (m *Manager) Poll() []Result {
	var results []Result
	remaining := m.inflight[:0]

	for _, job := range m.inflight {
		select {
		case waitErr := <-job.done:
			results = append(results, m.finish(job, waitErr))
		default:
			remaining = append(remaining, job)
		}
	}

	m.inflight = remaining
	return results
}

func (m *Manager) finish(job *Job, waitErr error) Result {
	res := Result{Job: job, Elapsed: time.Since(job.LaunchedAt)}

	if waitErr != nil {
		res.Err = fmt.Errorf("encode process failed: %w", waitErr)
	} else if _, err := os.Stat(job.Segment.OutputClip); err != nil {
		res.Err = fmt.Errorf("encode exited clean but output missing: %w", err)
	}

	if res.Err != nil {
		// Never leave a partial clip behind: the file existing implies a
		// committed row, and vice versa.
		if waitErr != nil {
			os.Remove(job.Segment.OutputClip)
		}
		if m.logger != nil {
			m.logger.Error("encode failed",
				"job_id", job.ID,
				"serve_id", job.Segment.ServeID,
				"output_clip", job.Segment.OutputClip,
				"error", res.Err,
			)
		}
		return res
	}

	if err := m.committer.Append(job.Segment); err != nil {
		res.Err = fmt.Errorf("commit segment: %w", err)
		if m.logger != nil {
			m.logger.Error("ledger commit failed", "job_id", job.ID, "error", err)
		}
		return res
	}

	res.Committed = true
	if m.logger != nil {
		m.logger.Info("encode complete",
			"job_id", job.ID,
			"serve_id", job.Segment.ServeID,
			"output_clip", job.Segment.OutputClip,
			"elapsed_s", res.Elapsed.Seconds(),
		)
	}
	return res
}

// Drain blocks until every submitted job has reached a terminal state,
// polling with short sleeps. Only the shutdown path calls it.
func (m *Manager) Drain() []Result {
	var all []Result
	for len(m.inflight) > 0 {
		got := m.Poll()
		all = append(all, got...)
		if len(m.inflight) > 0 {
			time.Sleep(100 * time.Millisecond)
		}
	}
	return all
}
