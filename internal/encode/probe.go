package encode

import (
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// SourceInfo is the probed metadata a playback session needs: an exact frame
// rate, a total frame count, and the derived duration.
type SourceInfo struct {
	Path       string
	FrameRate  float64
	FrameCount int
	Duration   float64
	Width      int
	Height     int
}

type ffprobeOutput struct {
	Streams []struct {
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Prober runs ffprobe against source files.
type Prober struct {
	Bin string
}

// Probe inspects the first video stream of path. A source that cannot be
// opened or has no video stream is a fatal session error for callers.
func (p Prober) Probe(path string) (*SourceInfo, error) {
	bin := p.Bin
	if bin == "" {
		bin = "ffprobe"
	}

	out, err := exec.Command(bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate,nb_frames,width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	return parseProbeOutput(path, out)
}

func parseProbeOutput(path string, out []byte) (*SourceInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse probe output for %s: %w", path, err)
	}
	if len(raw.Streams) == 0 {
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	stream := raw.Streams[0]
	fps, err := parseRational(stream.RFrameRate)
	if err != nil || fps <= 0 {
		return nil, fmt.Errorf("bad frame rate %q for %s", stream.RFrameRate, path)
	}

	info := &SourceInfo{
		Path:      path,
		FrameRate: fps,
		Width:     stream.Width,
		Height:    stream.Height,
	}

	if raw.Format.Duration != "" {
		d, err := strconv.ParseFloat(raw.Format.Duration, 64)
		if err == nil {
			info.Duration = d
		}
	}

	// Some containers omit nb_frames; fall back to duration * fps.
	if stream.NbFrames != "" {
		n, err := strconv.Atoi(stream.NbFrames)
		if err == nil {
			info.FrameCount = n
		}
	}
	if info.FrameCount == 0 && info.Duration > 0 {
		info.FrameCount = int(math.Round(info.Duration * fps))
	}
	if info.FrameCount <= 0 {
		return nil, fmt.Errorf("could not determine frame count for %s", path)
	}

	if info.Duration == 0 {
		info.Duration = float64(info.FrameCount) / fps
	}
	return info, nil
}

func parseRational(s string) (float64, error) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return strconv.ParseFloat(s, 64)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator in %q", s)
	}
	return n / d, nil
}
