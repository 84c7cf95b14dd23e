package walletserver

import (
	"encoding/json"
	"net/http"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError renders a domain.AppError in the callback surface's error
// shape, or falls back to an opaque 500 for anything unexpected.
func writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*domain.AppError)
	if !ok {
		appErr = domain.ErrInternal("internal server error", err)
	}
	writeJSON(w, appErr.Status, domain.ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

// writeCachedResult replays the exact response body stored on first
// success for a duplicate request, or writes it fresh otherwise. Either
// way the stored bytes ARE the response: nothing is re-derived.
func writeCachedResult(w http.ResponseWriter, result *domain.CommandResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if len(result.Transaction.ResponseCache) > 0 {
		w.Write(result.Transaction.ResponseCache)
		return
	}
	json.NewEncoder(w).Encode(domain.ErrorResponse{Success: false, Error: "no cached response available", Code: "INTERNAL_ERROR"})
}

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
