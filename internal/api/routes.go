package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Version is reported by /health.
var Version = "0.1.0"

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger, cfg.Metrics))

	r.Get("/health", healthHandler(cfg))
	r.Get("/serves", listServesHandler(cfg))
	r.Get("/recordings", listRecordingsHandler(cfg))
	r.Get("/playback/clip", playbackHandler(cfg))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

// listServesHandler returns the ledger, optionally filtered by player and/or
// session.
func listServesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segs, err := cfg.Ledger.Load()
		if err != nil {
			cfg.Logger.Error("failed to load ledger", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to load ledger", "INTERNAL_ERROR")
			return
		}

		player := r.URL.Query().Get("player")
		resp := ServesResponse{Serves: []ServeResponse{}}
		for _, seg := range segs {
			if player != "" && seg.Player != player {
				continue
			}
			resp.Serves = append(resp.Serves, SegmentToResponse(seg))
		}
		resp.Total = len(resp.Serves)
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listRecordingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Catalog == nil {
			WriteJSON(w, http.StatusOK, RecordingsResponse{Recordings: []RecordingResponse{}})
			return
		}
		recs, err := cfg.Catalog.List(r.Context())
		if err != nil {
			cfg.Logger.Error("failed to list recordings", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to list recordings", "INTERNAL_ERROR")
			return
		}
		resp := RecordingsResponse{Recordings: make([]RecordingResponse, len(recs))}
		for i, rec := range recs {
			resp.Recordings[i] = RecordingToResponse(rec)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// playbackHandler streams a produced clip. Only paths present in the ledger
// are served: the ledger is the authority on which clips exist, and it keeps
// this endpoint from becoming an arbitrary file reader.
func playbackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			WriteError(w, http.StatusBadRequest, "missing path parameter", "BAD_REQUEST")
			return
		}

		segs, err := cfg.Ledger.Load()
		if err != nil {
			cfg.Logger.Error("failed to load ledger", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to load ledger", "INTERNAL_ERROR")
			return
		}
		known := false
		for _, seg := range segs {
			if seg.OutputClip == path {
				known = true
				break
			}
		}
		if !known {
			WriteError(w, http.StatusNotFound, "clip not in ledger", "NOT_FOUND")
			return
		}

		if cfg.Metrics != nil {
			cfg.Metrics.IncClipsServed()
		}
		if err := serveClipFile(w, r, path); err != nil {
			cfg.Logger.Error("clip playback failed", "path", path, "error", err)
		}
	}
}
