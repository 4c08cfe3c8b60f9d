package handlers

import (
	"log/slog"
	"net/http"

	appmatch "padel-score-service/internal/app/match"
	"padel-score-service/internal/http/requestutil"
	"padel-score-service/internal/logging"
)

// AdminHandler exposes admin-only endpoints. With no token configured every
// request is rejected, so the surface is opt-in.
type AdminHandler struct {
	svc    *appmatch.Service
	token  string
	logger *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *appmatch.Service, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		token:  token,
		logger: logger,
	}
}

// ClearMatch removes every persisted match record. The live match keeps
// playing and re-persists on its next change.
func (h *AdminHandler) ClearMatch(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			logging.FieldPath, r.URL.Path,
			"client_ip", requestutil.ClientIP(r),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	if err := h.svc.ClearSaved(); err != nil {
		logging.Error(logger, "clear saved match failed", err)
		writeError(w, r, http.StatusInternalServerError, "failed to clear saved match", logger)
		return
	}

	logging.Info(logger, "saved match cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	return r.Header.Get("Authorization") == "Bearer "+h.token
}
