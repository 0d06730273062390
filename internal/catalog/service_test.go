package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/servecut/servecut/internal/db"
	"github.com/servecut/servecut/internal/encode"
)

type fakeProber struct {
	failFor map[string]bool
}

func (p *fakeProber) Probe(path string) (*encode.SourceInfo, error) {
	if p.failFor[filepath.Base(path)] {
		return nil, errors.New("probe failed")
	}
	return &encode.SourceInfo{
		Path:       path,
		FrameRate:  30,
		FrameCount: 9000,
		Duration:   300,
		Width:      1920,
		Height:     1080,
	}, nil
}

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "servecut.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func writeRaw(t *testing.T, root string, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanIndexesSessionRecordings(t *testing.T) {
	root := filepath.Join(t.TempDir(), "raw")
	a := writeRaw(t, root, "2026-03-14/session_2/cam1.mp4")
	writeRaw(t, root, "2026-03-14/session_2/cam2.mp4")
	writeRaw(t, root, "2026-03-14/session_2/notes.txt")

	repo := newTestRepo(t)
	svc := NewService(repo, &fakeProber{}, nil)

	report, err := svc.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Found != 2 || report.Indexed != 2 || report.Skipped != 0 {
		t.Errorf("report = %+v, want 2 found, 2 indexed", report)
	}

	rec, err := repo.GetByPath(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("recording not in catalog")
	}
	if rec.SessionID != 2 || rec.FrameRate != 30 || rec.FrameCount != 9000 {
		t.Errorf("recording = %+v", rec)
	}
}

func TestScanSkipsBadLayoutAndFailedProbes(t *testing.T) {
	root := filepath.Join(t.TempDir(), "raw")
	writeRaw(t, root, "2026-03-14/session_2/good.mp4")
	writeRaw(t, root, "loose.mp4")                       // not in a session dir
	writeRaw(t, root, "2026-03-14/session_2/broken.mp4") // probe fails

	repo := newTestRepo(t)
	svc := NewService(repo, &fakeProber{failFor: map[string]bool{"broken.mp4": true}}, nil)

	report, err := svc.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Found != 3 || report.Indexed != 1 || report.Skipped != 2 {
		t.Errorf("report = %+v, want 3 found, 1 indexed, 2 skipped", report)
	}
}

func TestRescanKeepsRecordingID(t *testing.T) {
	root := filepath.Join(t.TempDir(), "raw")
	path := writeRaw(t, root, "2026-03-14/session_5/cam1.mp4")

	repo := newTestRepo(t)
	svc := NewService(repo, &fakeProber{}, nil)
	ctx := context.Background()

	if _, err := svc.Scan(ctx, root); err != nil {
		t.Fatal(err)
	}
	first, err := repo.GetByPath(ctx, path)
	if err != nil || first == nil {
		t.Fatalf("first lookup: rec=%v err=%v", first, err)
	}

	if _, err := svc.Scan(ctx, root); err != nil {
		t.Fatal(err)
	}
	second, err := repo.GetByPath(ctx, path)
	if err != nil || second == nil {
		t.Fatalf("second lookup: rec=%v err=%v", second, err)
	}

	if first.ID != second.ID {
		t.Errorf("recording id changed on rescan: %s -> %s", first.ID, second.ID)
	}
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after rescan", count)
	}
}

func TestListOrdersBySession(t *testing.T) {
	root := filepath.Join(t.TempDir(), "raw")
	writeRaw(t, root, "2026-03-15/session_9/cam1.mp4")
	writeRaw(t, root, "2026-03-14/session_1/cam1.mp4")

	repo := newTestRepo(t)
	svc := NewService(repo, &fakeProber{}, nil)
	ctx := context.Background()

	if _, err := svc.Scan(ctx, root); err != nil {
		t.Fatal(err)
	}

	recs, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recordings, want 2", len(recs))
	}
	if recs[0].SessionID != 1 || recs[1].SessionID != 9 {
		t.Errorf("order = [%d %d], want [1 9]", recs[0].SessionID, recs[1].SessionID)
	}
}
