package handle

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"kujang-advisor/api/internal/advisor/types"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type historyResponse struct {
	Calculations []types.CalculationRecord `json:"calculations"`
}

// Calculations serves GET /api/calculations?limit=N.
func (h *Handle) Calculations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "GET only"})
		return
	}
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(v, maxHistoryLimit)
	}

	recs, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		zap.L().Error("list calculations", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list calculations"})
		return
	}
	if recs == nil {
		recs = []types.CalculationRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Calculations: recs})
}
