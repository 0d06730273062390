package encode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/servecut/servecut/internal/ledger"
)

// fakeTool writes a shell script standing in for ffmpeg. The script sleeps
// for delay, then either writes its final argument (the output path) and
// exits 0, or exits 1 without producing anything durable.
func fakeTool(t *testing.T, succeed bool, delay string) string {
	t.Helper()
	script := "#!/bin/sh\n"
	if delay != "" {
		script += "sleep " + delay + "\n"
	}
	script += `for a in "$@"; do out="$a"; done` + "\n"
	if succeed {
		script += "echo clip > \"$out\"\nexit 0\n"
	} else {
		script += "echo partial > \"$out\"\nexit 1\n"
	}

	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

type recordingCommitter struct {
	segs []ledger.Segment
	err  error
}

func (c *recordingCommitter) Append(seg ledger.Segment) error {
	if c.err != nil {
		return c.err
	}
	c.segs = append(c.segs, seg)
	return nil
}

func testSegment(t *testing.T, serveID int) ledger.Segment {
	t.Helper()
	return ledger.Segment{
		Player:      "ana",
		ServeID:     serveID,
		SessionID:   2,
		SourceVideo: "cam1.mp4",
		OutputClip:  filepath.Join(t.TempDir(), "segment_004.mp4"),
		StartFrame:  100,
		EndFrame:    250,
	}
}

func TestSubmitAndDrainCommitsOnSuccess(t *testing.T) {
	committer := &recordingCommitter{}
	m := NewManager(Options{FFmpegBin: fakeTool(t, true, "")}, 0, committer, nil)

	seg := testSegment(t, 4)
	if _, err := m.Submit(seg, 30); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	results := m.Drain()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !results[0].Committed || results[0].Err != nil {
		t.Fatalf("result = %+v, want committed", results[0])
	}
	if len(committer.segs) != 1 || committer.segs[0].ServeID != 4 {
		t.Fatalf("committed segs = %+v", committer.segs)
	}
	if _, err := os.Stat(seg.OutputClip); err != nil {
		t.Errorf("output clip missing after success: %v", err)
	}
	if m.InFlight() != 0 {
		t.Errorf("inflight = %d after drain", m.InFlight())
	}
}

func TestNonzeroExitIsFailureAndUnlinksPartial(t *testing.T) {
	committer := &recordingCommitter{}
	m := NewManager(Options{FFmpegBin: fakeTool(t, false, "")}, 0, committer, nil)

	seg := testSegment(t, 7)
	if _, err := m.Submit(seg, 30); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	results := m.Drain()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Committed || results[0].Err == nil {
		t.Fatalf("result = %+v, want failure", results[0])
	}
	if len(committer.segs) != 0 {
		t.Error("failed job reached the ledger")
	}
	if _, err := os.Stat(seg.OutputClip); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial output not unlinked: %v", err)
	}
}

func TestCleanExitWithMissingOutputIsFailure(t *testing.T) {
	// Script exits 0 but writes nowhere the job looks.
	script := "#!/bin/sh\nexit 0\n"
	bin := filepath.Join(t.TempDir(), "fake-ffmpeg")
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	committer := &recordingCommitter{}
	m := NewManager(Options{FFmpegBin: bin}, 0, committer, nil)

	if _, err := m.Submit(testSegment(t, 9), 30); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	results := m.Drain()
	if results[0].Committed || results[0].Err == nil {
		t.Fatalf("result = %+v, want failure for missing output", results[0])
	}
	if len(committer.segs) != 0 {
		t.Error("job with missing output reached the ledger")
	}
}

func TestPollDoesNotBlockOnRunningJobs(t *testing.T) {
	committer := &recordingCommitter{}
	m := NewManager(Options{FFmpegBin: fakeTool(t, true, "0.5")}, 0, committer, nil)

	if _, err := m.Submit(testSegment(t, 1), 30); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	start := time.Now()
	results := m.Poll()
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("Poll blocked for %v", elapsed)
	}
	if len(results) != 0 {
		t.Errorf("Poll harvested a still-running job: %+v", results)
	}
	if m.InFlight() != 1 {
		t.Errorf("inflight = %d, want 1", m.InFlight())
	}

	m.Drain()
}

func TestCompletionOrderNotSubmissionOrder(t *testing.T) {
	committer := &recordingCommitter{}
	m := NewManager(Options{}, 0, committer, nil)

	slow := testSegment(t, 5)
	fast := testSegment(t, 6)

	slowBin := fakeTool(t, true, "0.5")
	fastBin := fakeTool(t, true, "")

	m.opts.FFmpegBin = slowBin
	if _, err := m.Submit(slow, 30); err != nil {
		t.Fatal(err)
	}
	m.opts.FFmpegBin = fastBin
	if _, err := m.Submit(fast, 30); err != nil {
		t.Fatal(err)
	}

	m.Drain()

	if len(committer.segs) != 2 {
		t.Fatalf("committed %d segments, want 2", len(committer.segs))
	}
	if committer.segs[0].ServeID != 6 || committer.segs[1].ServeID != 5 {
		t.Errorf("commit order = [%d %d], want [6 5] (completion order)",
			committer.segs[0].ServeID, committer.segs[1].ServeID)
	}
}

func TestMaxJobsCap(t *testing.T) {
	committer := &recordingCommitter{}
	m := NewManager(Options{FFmpegBin: fakeTool(t, true, "0.5")}, 1, committer, nil)

	if _, err := m.Submit(testSegment(t, 1), 30); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	_, err := m.Submit(testSegment(t, 2), 30)
	if !errors.Is(err, ErrTooManyJobs) {
		t.Fatalf("second Submit err = %v, want ErrTooManyJobs", err)
	}

	m.Drain()

	// Cap frees up once the job is harvested.
	if _, err := m.Submit(testSegment(t, 3), 30); err != nil {
		t.Fatalf("Submit after drain: %v", err)
	}
	m.Drain()
}

func TestCommitErrorSurfacesInResult(t *testing.T) {
	committer := &recordingCommitter{err: errors.New("disk full")}
	m := NewManager(Options{FFmpegBin: fakeTool(t, true, "")}, 0, committer, nil)

	if _, err := m.Submit(testSegment(t, 1), 30); err != nil {
		t.Fatal(err)
	}
	results := m.Drain()
	if results[0].Committed || results[0].Err == nil {
		t.Fatalf("result = %+v, want commit failure", results[0])
	}
}
