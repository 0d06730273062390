package clips

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNextIDEmptyDir(t *testing.T) {
	id, err := NextID(t.TempDir())
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != 1 {
		t.Errorf("NextID = %d, want 1", id)
	}
}

func TestNextIDMissingDir(t *testing.T) {
	id, err := NextID(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != 1 {
		t.Errorf("NextID = %d, want 1", id)
	}
}

func TestNextIDScansMax(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "segment_001.mp4")
	touch(t, dir, "segment_002.mp4")
	touch(t, dir, "segment_003.mp4")

	id, err := NextID(dir)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != 4 {
		t.Errorf("NextID = %d, want 4", id)
	}
}

func TestNextIDIgnoresMalformedAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "segment_007.mp4")
	touch(t, dir, "segment_abc.mp4")
	touch(t, dir, "segment_12.mp4") // not 3-digit
	touch(t, dir, "notes.txt")
	touch(t, dir, "segment_099.mkv")

	id, err := NextID(dir)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != 8 {
		t.Errorf("NextID = %d, want 8", id)
	}
}

func TestNextIDUnaffectedByGaps(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "segment_001.mp4")
	touch(t, dir, "segment_005.mp4")

	id, err := NextID(dir)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if id != 6 {
		t.Errorf("NextID = %d, want 6: gaps are never reused", id)
	}
}

func TestLast(t *testing.T) {
	dir := t.TempDir()

	_, _, ok, err := Last(dir)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if ok {
		t.Fatal("Last reported a clip in an empty dir")
	}

	touch(t, dir, "segment_002.mp4")
	touch(t, dir, "segment_004.mp4")

	id, path, ok, err := Last(dir)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if !ok {
		t.Fatal("Last found nothing")
	}
	if id != 4 {
		t.Errorf("id = %d, want 4", id)
	}
	if filepath.Base(path) != "segment_004.mp4" {
		t.Errorf("path = %q, want segment_004.mp4", path)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(7); got != "segment_007.mp4" {
		t.Errorf("FileName(7) = %q", got)
	}
	if got := FormatID(42); got != "042" {
		t.Errorf("FormatID(42) = %q", got)
	}
}

func TestSessionIDFromPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    int
		wantErr bool
	}{
		{"canonical", "data/videos/raw/2026-03-14/session_2/cam1.mp4", 2, false},
		{"absolute", "/home/op/data/videos/raw/2026-03-14/session_12/a.mp4", 12, false},
		{"no raw element", "data/videos/sessions/session_2/cam1.mp4", 0, true},
		{"raw too shallow", "raw/cam1.mp4", 0, true},
		{"not a session dir", "data/raw/2026-03-14/game_2/cam1.mp4", 0, true},
		{"non-numeric session", "data/raw/2026-03-14/session_two/cam1.mp4", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SessionIDFromPath(tc.path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got session %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SessionIDFromPath: %v", err)
			}
			if got != tc.want {
				t.Errorf("session = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestOutputDir(t *testing.T) {
	got := OutputDir("/clips", "ana", 3)
	want := filepath.Join("/clips", "ana", "session_3")
	if got != want {
		t.Errorf("OutputDir = %q, want %q", got, want)
	}
}
