package frames

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlanEvenClamps(t *testing.T) {
	tests := []struct {
		name       string
		frameCount int
		fps        float64
		wantN      int
	}{
		{"short clip hits floor", 150, 30, 30},   // 5s * 4 = 20 -> 30
		{"long clip hits ceiling", 1800, 30, 40}, // 60s * 4 = 240 -> 40
		{"mid clip unclamped", 263, 30, 35},      // 8.75s * 4 = 35
		{"tiny clip capped by frames", 10, 30, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PlanEven(tc.frameCount, tc.fps)
			if len(got) != tc.wantN {
				t.Fatalf("planned %d frames, want %d", len(got), tc.wantN)
			}
			if got[0] != 0 {
				t.Errorf("first index = %d, want 0", got[0])
			}
			if got[len(got)-1] != tc.frameCount-1 {
				t.Errorf("last index = %d, want %d", got[len(got)-1], tc.frameCount-1)
			}
			for i := 1; i < len(got); i++ {
				if got[i] <= got[i-1] {
					t.Fatalf("indices not strictly increasing at %d: %v", i, got)
				}
			}
		})
	}
}

func TestPlanEvenEmptyClip(t *testing.T) {
	if got := PlanEven(0, 30); got != nil {
		t.Errorf("PlanEven(0) = %v, want nil", got)
	}
}

func TestClampRange(t *testing.T) {
	tests := []struct {
		name               string
		start, end, count  int
		wantStart, wantEnd int
		wantOK             bool
	}{
		{"inside", 10, 20, 100, 10, 20, true},
		{"negative start", -5, 20, 100, 0, 20, true},
		{"end past count", 10, 500, 100, 10, 99, true},
		{"inverted", 50, 10, 100, 0, 0, false},
		{"empty clip", 0, 10, 0, 0, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, e, ok := ClampRange(tc.start, tc.end, tc.count)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && (s != tc.wantStart || e != tc.wantEnd) {
				t.Errorf("range = [%d,%d], want [%d,%d]", s, e, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestSelectIndices(t *testing.T) {
	got := selectIndices([]int{0, 5, 9})
	want := `select=eq(n\,0)+eq(n\,5)+eq(n\,9)`
	if got != want {
		t.Errorf("selectIndices = %q, want %q", got, want)
	}
}

func TestDirName(t *testing.T) {
	if got := DirName("ana", 2, 4); got != "ana_session_2_serve_004" {
		t.Errorf("DirName = %q", got)
	}
}

func TestExtractIndicesInvokesTool(t *testing.T) {
	// Fake ffmpeg that records its arguments.
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\nexit 0\n"
	bin := filepath.Join(dir, "fake-ffmpeg")
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	e := Extractor{Bin: bin}
	if err := e.ExtractIndices("clip.mp4", outDir, []int{3, 7}); err != nil {
		t.Fatalf("ExtractIndices: %v", err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{"clip.mp4", `eq(n\,3)+eq(n\,7)`, "frame%04d.jpg"} {
		if !strings.Contains(got, want) {
			t.Errorf("args %q missing %q", got, want)
		}
	}
	if _, err := os.Stat(outDir); err != nil {
		t.Errorf("output dir not created: %v", err)
	}
}

func TestExtractRangeRejectsEmpty(t *testing.T) {
	e := Extractor{Bin: "/nonexistent"}
	if err := e.ExtractRange("clip.mp4", t.TempDir(), 50, 10, 100); err == nil {
		t.Fatal("expected error for empty range")
	}
}
