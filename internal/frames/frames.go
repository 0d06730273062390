// Package frames dumps still frames from finished clips for labeling and
// dataset assembly. All selection happens by frame index through ffmpeg's
// select filter, so extracted frames line up exactly with ledger frame
// numbers.
package frames

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strings"
)

const (
	// Evenly spaced extraction aims for ~4 frames per second of clip,
	// clamped to a usable labeling batch.
	perSecond = 4.0
	minEven   = 30
	maxEven   = 40
)

// DirName returns the frame output directory name for one clip.
func DirName(player string, sessionID, serveID int) string {
	return fmt.Sprintf("%s_session_%d_serve_%03d", player, sessionID, serveID)
}

// PlanEven returns evenly spaced frame indices across a clip of frameCount
// frames at fps. The count targets perSecond frames per second, clamped to
// [minEven, maxEven], and never exceeds frameCount.
func PlanEven(frameCount int, fps float64) []int {
	if frameCount <= 0 {
		return nil
	}
	duration := float64(frameCount) / fps
	n := int(math.Round(duration * perSecond))
	if n < minEven {
		n = minEven
	}
	if n > maxEven {
		n = maxEven
	}
	if n > frameCount {
		n = frameCount
	}
	return linspace(frameCount-1, n)
}

// linspace returns n integer indices evenly spread over [0, last].
func linspace(last, n int) []int {
	if n <= 1 {
		return []int{0}
	}
	out := make([]int, 0, n)
	prev := -1
	for i := 0; i < n; i++ {
		idx := int(math.Round(float64(i) * float64(last) / float64(n-1)))
		if idx == prev {
			continue
		}
		out = append(out, idx)
		prev = idx
	}
	return out
}

// ClampRange clamps an inclusive [start, end] request to [0, frameCount-1].
// ok is false when the clamped range is empty.
func ClampRange(start, end, frameCount int) (int, int, bool) {
	if start < 0 {
		start = 0
	}
	if end > frameCount-1 {
		end = frameCount - 1
	}
	if frameCount <= 0 || start > end {
		return 0, 0, false
	}
	return start, end, true
}

// selectIndices builds a select-filter expression matching exactly the given
// frame indices.
func selectIndices(indices []int) string {
	terms := make([]string, len(indices))
	for i, idx := range indices {
		terms[i] = fmt.Sprintf("eq(n\\,%d)", idx)
	}
	return "select=" + strings.Join(terms, "+")
}

// Extractor runs ffmpeg to dump frames. Extraction is plain sequential I/O:
// each call blocks until ffmpeg exits.
type Extractor struct {
	Bin    string
	Logger *slog.Logger
}

func (e Extractor) bin() string {
	if e.Bin == "" {
		return "ffmpeg"
	}
	return e.Bin
}

func (e Extractor) run(clip, outDir, filter, pattern string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create frame dir: %w", err)
	}

	args := []string{
		"-i", clip,
		"-vf", filter,
		"-vsync", "0",
		"-q:v", "2",
		outDir + "/" + pattern,
	}
	out, err := exec.Command(e.bin(), args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("extract frames from %s: %w: %s", clip, err, strings.TrimSpace(string(out)))
	}
	if e.Logger != nil {
		e.Logger.Info("frames extracted", "clip", clip, "out_dir", outDir)
	}
	return nil
}

// ExtractIndices dumps the given frame indices as frame%04d.jpg.
func (e Extractor) ExtractIndices(clip, outDir string, indices []int) error {
	if len(indices) == 0 {
		return fmt.Errorf("no frames selected for %s", clip)
	}
	return e.run(clip, outDir, selectIndices(indices), "frame%04d.jpg")
}

// ExtractEveryNth dumps every step-th frame as frame%06d.jpg.
func (e Extractor) ExtractEveryNth(clip, outDir string, step int) error {
	if step < 1 {
		step = 1
	}
	return e.run(clip, outDir, fmt.Sprintf("select=not(mod(n\\,%d))", step), "frame%06d.jpg")
}

// ExtractRange dumps the inclusive frame range [start, end], clamped to the
// clip bounds, as frame%06d.jpg.
func (e Extractor) ExtractRange(clip, outDir string, start, end, frameCount int) error {
	start, end, ok := ClampRange(start, end, frameCount)
	if !ok {
		return fmt.Errorf("empty frame range for %s", clip)
	}
	return e.run(clip, outDir, fmt.Sprintf("select=between(n\\,%d\\,%d)", start, end), "frame%06d.jpg")
}
