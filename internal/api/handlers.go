package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"regexp"
	"time"

	"github.com/chrissnell/aprsingest/internal/apperr"
	"github.com/chrissnell/aprsingest/internal/log"
	"github.com/chrissnell/aprsingest/internal/packet"
	"github.com/chrissnell/aprsingest/internal/store"
)

var senderPattern = regexp.MustCompile(`^[A-Z0-9]{1,6}(-[0-9]{1,2})?$`)

// packetsResponse is the §4.6 paginated envelope.
type packetsResponse struct {
	Items      []packet.DTO `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalCount int64        `json:"totalCount"`
	TotalPages int64        `json:"totalPages"`
	HasNext    bool         `json:"hasNext"`
	HasPrev    bool         `json:"hasPrev"`
}

type errorResponse struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleGetPackets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := store.Filter{Page: 1, PageSize: 100}

	if v := q.Get("page"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page", "must be an integer >= 1")
			return
		}
		f.Page = n
	}

	if v := q.Get("pageSize"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "pageSize", "must be an integer in [1,1000]")
			return
		}
		f.PageSize = n
	}

	if sender := q.Get("sender"); sender != "" {
		if len(sender) > 15 || !senderPattern.MatchString(sender) {
			writeError(w, http.StatusBadRequest, "sender", "must match ^[A-Z0-9]{1,6}(-[0-9]{1,2})?$ and be at most 15 characters")
			return
		}
		f.Sender = sender
	}

	if typ := q.Get("type"); typ != "" {
		f.Type = typ
	}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from", "must be ISO8601/RFC3339")
			return
		}
		f.From = t
	}

	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to", "must be ISO8601/RFC3339")
			return
		}
		f.To = t
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		writeError(w, http.StatusBadRequest, "from", "must be before or equal to to")
		return
	}

	packets, total, err := s.store.Search(r.Context(), f)
	if err != nil {
		writeInternalError(w, s.logger, err)
		return
	}

	dtos := make([]packet.DTO, 0, len(packets))
	for _, p := range packets {
		dtos = append(dtos, p.ToDTO())
	}

	totalPages := int64(math.Ceil(float64(total) / float64(f.PageSize)))
	resp := packetsResponse{
		Items:      dtos,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    int64(f.Page) < totalPages,
		HasPrev:    f.Page > 1,
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports per-component liveness, mirroring the teacher's
// GetHealth() map[string]interface{} pattern across its controllers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]interface{}{}
	healthy := true

	if err := s.db.Ping(ctx); err != nil {
		components["database"] = map[string]interface{}{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		components["database"] = map[string]interface{}{"status": "up"}
	}

	if err := s.cache.Ping(ctx); err != nil {
		components["cache"] = map[string]interface{}{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		components["cache"] = map[string]interface{}{"status": "up"}
	}

	streamStatus := "disconnected"
	if s.stream.Connected() {
		streamStatus = "connected"
	}
	components["stream"] = map[string]interface{}{"status": streamStatus}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	writeJSON(w, status, map[string]interface{}{
		"status":     overall,
		"components": components,
	})
}

// handleDebugLogs returns the most recent buffered log entries, an
// operator-facing introspection hook backed by the same circular buffer
// the logger writes every line to.
func (s *Server) handleDebugLogs(w http.ResponseWriter, r *http.Request) {
	buf := log.GetLogBuffer()
	if buf == nil {
		writeJSON(w, http.StatusOK, []log.LogEntry{})
		return
	}
	writeJSON(w, http.StatusOK, buf.GetLogs(false))
}

func parsePositiveInt(s string) (int, error) {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errors.New("not a non-negative integer")
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 && s != "0" {
		return 0, errors.New("not a non-negative integer")
	}
	return n, nil
}

func writeError(w http.ResponseWriter, status int, field, message string) {
	writeJSON(w, status, errorResponse{Field: field, Message: message})
}

func writeInternalError(w http.ResponseWriter, logger interface{ Errorf(string, ...interface{}) }, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind == apperr.KindValidation {
		writeError(w, http.StatusBadRequest, ae.Field, ae.Message)
		return
	}
	logger.Errorf("internal error serving request: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
