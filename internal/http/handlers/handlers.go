package handlers

import (
	"errors"
	"log/slog"
	nethttp "net/http"

	appmatch "padel-score-service/internal/app/match"
	domainmatch "padel-score-service/internal/domain/match"
	"padel-score-service/internal/logging"
	"padel-score-service/internal/matchlog"
	"padel-score-service/internal/persist"
)

// Handler wires HTTP routes to the match service.
type Handler struct {
	svc      *appmatch.Service
	logger   *slog.Logger
	statusFn func() persist.Status
}

// NewHandler constructs a Handler.
func NewHandler(svc *appmatch.Service, logger *slog.Logger, statusFn func() persist.Status) *Handler {
	return &Handler{
		svc:      svc,
		logger:   logger,
		statusFn: statusFn,
	}
}

type scoreRequest struct {
	Team string `json:"team"`
}

type undoRequest struct {
	Team string `json:"team"`
}

type newMatchRequest struct {
	TeamA           string `json:"teamA"`
	TeamB           string `json:"teamB"`
	SetsNeededToWin int    `json:"setsNeededToWin"`
}

type recentResponse struct {
	Matches []matchlog.Entry `json:"matches"`
}

// Health reports process liveness.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic: the persistence synchronizer must not
// be failing its recent drains.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.statusFn == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

// Match returns the current match state.
func (h *Handler) Match(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, h.svc.Current(), h.logger)
}

// Score applies one point to the requested team.
func (h *Handler) Score(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)

	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid request body", logger)
		return
	}

	st, err := h.svc.Score(domainmatch.TeamID(req.Team))
	switch {
	case errors.Is(err, appmatch.ErrUnknownTeam):
		writeError(w, r, nethttp.StatusBadRequest, "unknown team", logger)
		return
	case errors.Is(err, appmatch.ErrMatchFinished):
		writeError(w, r, nethttp.StatusConflict, "match already finished", logger)
		return
	case err != nil:
		writeError(w, r, nethttp.StatusInternalServerError, "failed to score point", logger)
		return
	}

	logging.Debug(logger, "point scored", logging.FieldTeam, req.Team)
	writeJSON(w, nethttp.StatusOK, st, logger)
}

// Undo rolls back the last point, or the given team's last point advance when
// the body names one.
func (h *Handler) Undo(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)

	var req undoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid request body", logger)
		return
	}

	var (
		st  domainmatch.State
		err error
	)
	if req.Team == "" {
		st, err = h.svc.UndoLast()
	} else {
		st, err = h.svc.UndoForTeam(domainmatch.TeamID(req.Team))
	}
	switch {
	case errors.Is(err, appmatch.ErrUnknownTeam):
		writeError(w, r, nethttp.StatusBadRequest, "unknown team", logger)
		return
	case errors.Is(err, appmatch.ErrNothingToUndo):
		writeError(w, r, nethttp.StatusConflict, "nothing to undo", logger)
		return
	case err != nil:
		writeError(w, r, nethttp.StatusInternalServerError, "failed to undo", logger)
		return
	}

	logging.Debug(logger, "point undone", logging.FieldTeam, req.Team)
	writeJSON(w, nethttp.StatusOK, st, logger)
}

// NewMatch abandons the current match and starts a fresh one. Omitted fields
// fall back to the configured defaults.
func (h *Handler) NewMatch(w nethttp.ResponseWriter, r *nethttp.Request) {
	logger := loggerFromContext(r, h.logger)

	var req newMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid request body", logger)
		return
	}
	if req.SetsNeededToWin < 0 {
		writeError(w, r, nethttp.StatusBadRequest, "setsNeededToWin must be positive", logger)
		return
	}

	st := h.svc.StartNew(req.TeamA, req.TeamB, req.SetsNeededToWin)
	writeJSON(w, nethttp.StatusOK, st, logger)
}

// Recent lists recently finished matches, newest first.
func (h *Handler) Recent(w nethttp.ResponseWriter, r *nethttp.Request) {
	entries := h.svc.RecentMatches()
	if entries == nil {
		entries = []matchlog.Entry{}
	}
	writeJSON(w, nethttp.StatusOK, recentResponse{Matches: entries}, h.logger)
}

// NotFound renders unknown routes in the same JSON error shape as the rest of
// the API.
func (h *Handler) NotFound(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed renders method mismatches in the API error shape.
func (h *Handler) MethodNotAllowed(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
}
