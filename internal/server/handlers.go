package server

import (
	"encoding/json"
	"net/http"

	"github.com/skel-labs/skelbot/internal/logging"
	"github.com/skel-labs/skelbot/internal/telegram"
)

// handleWebhook receives one update per request. Telegram retries
// non-2xx deliveries, so handler-level failures still return 200 once
// the update has been accepted.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var upd telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "malformed update payload")
		return
	}

	h, err := s.updateHandler(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("webhook handler init failed")
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "handler unavailable")
		return
	}

	h.HandleUpdate(r.Context(), upd)
	writeSuccess(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
