// Package clips defines the on-disk layout for finished clips and derives
// allocator state from it. The filesystem is the source of truth for the
// next segment id: nothing here keeps an in-memory counter, so allocation
// survives restarts and stays consistent with deletes.
package clips

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Ext is the container extension for produced clips.
const Ext = ".mp4"

var segmentPattern = regexp.MustCompile(`^segment_(\d{3})\` + Ext + `$`)

// ErrSessionPath reports a raw recording path that does not encode a session id.
var ErrSessionPath = errors.New("could not detect session from raw path, expected .../raw/<date>/session_<num>/<file>")

// FileName returns the canonical clip filename for a segment id.
func FileName(id int) string {
	return fmt.Sprintf("segment_%03d%s", id, Ext)
}

// FormatID renders a segment id the way the ledger persists it.
func FormatID(id int) string {
	return fmt.Sprintf("%03d", id)
}

// OutputDir returns the directory clips for one player/session land in:
// <base>/<player>/session_<N>.
func OutputDir(base, player string, sessionID int) string {
	return filepath.Join(base, player, fmt.Sprintf("session_%d", sessionID))
}

// NextID scans dir for existing segment files and returns one greater than
// the maximum id found, or 1 when none exist. Files matching the segment
// prefix but failing to parse are skipped.
func NextID(dir string) (int, error) {
	maxID, _, err := scanMax(dir)
	if err != nil {
		return 0, err
	}
	return maxID + 1, nil
}

// Last returns the highest-numbered segment file in dir and its id.
// ok is false when dir contains no segment files.
func Last(dir string) (id int, path string, ok bool, err error) {
	maxID, maxPath, err := scanMax(dir)
	if err != nil {
		return 0, "", false, err
	}
	if maxPath == "" {
		return 0, "", false, nil
	}
	return maxID, maxPath, true, nil
}

func scanMax(dir string) (int, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, "", nil
		}
		return 0, "", fmt.Errorf("scan clip dir %s: %w", dir, err)
	}

	maxID := 0
	maxPath := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := segmentPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if id > maxID {
			maxID = id
			maxPath = filepath.Join(dir, e.Name())
		}
	}
	return maxID, maxPath, nil
}

// SessionIDFromPath extracts the session number from a raw recording path
// shaped like <raw>/<date>/session_<num>/<file>. The session directory must
// sit two levels below the "raw" path element.
func SessionIDFromPath(videoPath string) (int, error) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(videoPath)), "/")
	for i, p := range parts {
		if p != "raw" {
			continue
		}
		if i+2 >= len(parts) {
			break
		}
		sess := parts[i+2]
		if num, ok := strings.CutPrefix(sess, "session_"); ok {
			id, err := strconv.Atoi(num)
			if err == nil && id >= 0 {
				return id, nil
			}
		}
		break
	}
	return 0, ErrSessionPath
}
