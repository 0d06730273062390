package ledger

import (
	"fmt"
	"strconv"

	"github.com/servecut/servecut/internal/clips"
)

// Header is the fixed column set of the ledger file. Downstream tools match
// rows by output_clip and patch landing_frame in place, so column order is
// part of the contract.
var Header = []string{
	"player",
	"serve_id",
	"session_id",
	"source_video",
	"output_clip",
	"start_frame",
	"end_frame",
	"landing_frame",
}

// Segment is one committed clip: the unit every downstream tool consumes.
// LandingFrame is nil until the labeling pass fills it in.
type Segment struct {
	Player       string
	ServeID      int
	SessionID    int
	SourceVideo  string
	OutputClip   string
	StartFrame   int
	EndFrame     int
	LandingFrame *int
}

// Key reports whether the segment matches the (player, serve_id, output_clip)
// row key used by the delete path.
func (s Segment) Key(player string, serveID int, outputClip string) bool {
	return s.Player == player && s.ServeID == serveID && s.OutputClip == outputClip
}

func (s Segment) record() []string {
	landing := ""
	if s.LandingFrame != nil {
		landing = strconv.Itoa(*s.LandingFrame)
	}
	return []string{
		s.Player,
		clips.FormatID(s.ServeID),
		strconv.Itoa(s.SessionID),
		s.SourceVideo,
		s.OutputClip,
		strconv.Itoa(s.StartFrame),
		strconv.Itoa(s.EndFrame),
		landing,
	}
}

func parseRecord(rec []string) (Segment, error) {
	if len(rec) != len(Header) {
		return Segment{}, fmt.Errorf("ledger row has %d columns, want %d", len(rec), len(Header))
	}

	serveID, err := strconv.Atoi(rec[1])
	if err != nil {
		return Segment{}, fmt.Errorf("bad serve_id %q: %w", rec[1], err)
	}
	sessionID, err := strconv.Atoi(rec[2])
	if err != nil {
		return Segment{}, fmt.Errorf("bad session_id %q: %w", rec[2], err)
	}
	startFrame, err := strconv.Atoi(rec[5])
	if err != nil {
		return Segment{}, fmt.Errorf("bad start_frame %q: %w", rec[5], err)
	}
	endFrame, err := strconv.Atoi(rec[6])
	if err != nil {
		return Segment{}, fmt.Errorf("bad end_frame %q: %w", rec[6], err)
	}

	seg := Segment{
		Player:      rec[0],
		ServeID:     serveID,
		SessionID:   sessionID,
		SourceVideo: rec[3],
		OutputClip:  rec[4],
		StartFrame:  startFrame,
		EndFrame:    endFrame,
	}

	if rec[7] != "" {
		landing, err := strconv.Atoi(rec[7])
		if err != nil {
			return Segment{}, fmt.Errorf("bad landing_frame %q: %w", rec[7], err)
		}
		seg.LandingFrame = &landing
	}
	return seg, nil
}
