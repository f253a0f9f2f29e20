package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handcloud/internal/store"
)

// HistoryHandler lists recorded sessions and gesture events.
//
//	GET /api/events?limit=N
//	GET /api/sessions?limit=N
//	GET /api/sessions/{id}
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

type eventResponse struct {
	ID        int64    `json:"id"`
	SessionID string   `json:"session_id,omitempty"`
	Signals   []string `json:"signals"`
	Shape     string   `json:"shape"`
	Color     string   `json:"color"`
	CreatedAt string   `json:"created_at"`
}

type sessionResponse struct {
	ID        string          `json:"id"`
	StartedAt string          `json:"started_at"`
	EndedAt   string          `json:"ended_at,omitempty"`
	Active    bool            `json:"active"`
	Events    []eventResponse `json:"events,omitempty"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

func toEventResponse(e *store.GestureEvent) eventResponse {
	signals := e.Signals
	if signals == nil {
		signals = []string{}
	}
	return eventResponse{
		ID:        e.ID,
		SessionID: e.SessionID,
		Signals:   signals,
		Shape:     e.Shape,
		Color:     e.Color,
		CreatedAt: e.CreatedAt.Format(timeLayout),
	}
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		StartedAt: s.StartedAt.Format(timeLayout),
		Active:    s.Active(),
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.Format(timeLayout)
	}
	return resp
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch {
	case r.URL.Path == "/api/events":
		h.listEvents(w, r)
	case r.URL.Path == "/api/sessions":
		h.listSessions(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/sessions/"):
		h.getSession(w, strings.TrimPrefix(r.URL.Path, "/api/sessions/"))
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *HistoryHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	resp := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HistoryHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	resp := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HistoryHandler) getSession(w http.ResponseWriter, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	events, err := h.store.Events().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list session events")
		return
	}

	resp := toSessionResponse(sess)
	for _, e := range events {
		resp.Events = append(resp.Events, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}
