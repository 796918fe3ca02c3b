package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MimeLyc/caption-transcript/internal/transcript"
)

var errRateLimited = errors.New("rate limit exceeded")

type transcriptRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var ref string
	switch r.Method {
	case http.MethodGet:
		ref = r.URL.Query().Get("url")
	case http.MethodPost:
		var req transcriptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeResult(w, transcript.FailureResult(transcript.ErrUsage, "invalid request body"))
			return
		}
		ref = req.URL
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		writeResult(w, transcript.FailureResult(transcript.ErrUsage, "url is required"))
		return
	}

	res, ok := s.transcribe(r.Context(), ref)
	if !ok {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	writeResult(w, res)
}

// transcribe shares one extraction between concurrent requests for the same
// reference. The extraction outlives a disconnecting caller because other
// callers may be waiting on it. ok is false when the rate limiter refused
// to start a new extraction.
func (s *Server) transcribe(ctx context.Context, ref string) (transcript.Result, bool) {
	ctx = context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(ref, func() (any, error) {
		if s.limiter != nil && !s.limiter.Allow() {
			return nil, errRateLimited
		}
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return transcript.FailureResult(transcript.ErrUnknown, err.Error()), nil
		}
		defer s.sem.Release(1)
		return s.svc.Get(ctx, ref), nil
	})
	if err != nil {
		return transcript.Result{}, false
	}
	return v.(transcript.Result), true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func statusFor(res transcript.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.ErrorType {
	case transcript.ErrUsage.String():
		return http.StatusBadRequest
	case transcript.ErrMetadataFetch.String(), transcript.ErrDownload.String():
		return http.StatusBadGateway
	case transcript.ErrDecode.String():
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeResult(w http.ResponseWriter, res transcript.Result) {
	writeJSON(w, statusFor(res), res)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
