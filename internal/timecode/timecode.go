// Package timecode converts operator-entered timestamps to frame indices.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSeconds accepts either a plain seconds value ("12.5") or a clock
// timestamp ("hh:mm:ss.ms", "mm:ss.ms") and returns seconds.
func ParseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	if !strings.Contains(s, ":") {
		sec, err := strconv.ParseFloat(s, 64)
		if err != nil || sec < 0 {
			return 0, fmt.Errorf("bad timestamp %q", s)
		}
		return sec, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}

	total := 0.0
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("bad timestamp %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

// FrameAt returns the frame index closest to sec at the given rate.
func FrameAt(sec, fps float64) int {
	return int(math.Round(sec * fps))
}
