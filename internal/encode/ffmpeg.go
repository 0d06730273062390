// Package encode converts closed marks into clip files by driving ffmpeg as
// an external process, one process per segment, without ever blocking the
// operator's playback loop.
package encode

import (
	"fmt"
	"strconv"
)

// Options carries the fixed encoder settings applied to every clip.
type Options struct {
	FFmpegBin string
	Preset    string
	CRF       int
}

func (o Options) bin() string {
	if o.FFmpegBin == "" {
		return "ffmpeg"
	}
	return o.FFmpegBin
}

// FrameTime converts a frame index to seconds at the given rate, formatted
// for an ffmpeg -ss/-to argument.
func FrameTime(frame int, fps float64) string {
	return fmt.Sprintf("%.6f", float64(frame)/fps)
}

// CutArgs builds the ffmpeg argument list for cutting [startFrame, endFrame)
// out of src into out. -n refuses to overwrite an existing output, audio is
// stripped, and the output frame rate is pinned to the source rate so frame
// indices stay authoritative downstream.
func CutArgs(opts Options, src string, startFrame, endFrame int, fps float64, out string) []string {
	return []string{
		"-n",
		"-ss", FrameTime(startFrame, fps),
		"-to", FrameTime(endFrame, fps),
		"-i", src,
		"-an",
		"-c:v", "libx264",
		"-preset", opts.Preset,
		"-crf", strconv.Itoa(opts.CRF),
		"-r", fmt.Sprintf("%g", fps),
		out,
	}
}
