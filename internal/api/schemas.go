package api

import (
	"encoding/json"
	"net/http"

	"github.com/servecut/servecut/internal/catalog"
	"github.com/servecut/servecut/internal/clips"
	"github.com/servecut/servecut/internal/ledger"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ServeResponse struct {
	Player       string `json:"player"`
	ServeID      string `json:"serve_id"`
	SessionID    int    `json:"session_id"`
	SourceVideo  string `json:"source_video"`
	OutputClip   string `json:"output_clip"`
	StartFrame   int    `json:"start_frame"`
	EndFrame     int    `json:"end_frame"`
	LandingFrame *int   `json:"landing_frame,omitempty"`
}

type ServesResponse struct {
	Serves []ServeResponse `json:"serves"`
	Total  int             `json:"total"`
}

type RecordingResponse struct {
	ID         string  `json:"id"`
	Path       string  `json:"path"`
	SessionID  int     `json:"session_id"`
	FrameRate  float64 `json:"frame_rate"`
	FrameCount int     `json:"frame_count"`
	DurationS  float64 `json:"duration_s"`
}

type RecordingsResponse struct {
	Recordings []RecordingResponse `json:"recordings"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func SegmentToResponse(seg ledger.Segment) ServeResponse {
	return ServeResponse{
		Player:       seg.Player,
		ServeID:      clips.FormatID(seg.ServeID),
		SessionID:    seg.SessionID,
		SourceVideo:  seg.SourceVideo,
		OutputClip:   seg.OutputClip,
		StartFrame:   seg.StartFrame,
		EndFrame:     seg.EndFrame,
		LandingFrame: seg.LandingFrame,
	}
}

func RecordingToResponse(rec *catalog.Recording) RecordingResponse {
	return RecordingResponse{
		ID:         rec.ID,
		Path:       rec.Path,
		SessionID:  rec.SessionID,
		FrameRate:  rec.FrameRate,
		FrameCount: rec.FrameCount,
		DurationS:  rec.Duration,
	}
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, status int, msg, code string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
