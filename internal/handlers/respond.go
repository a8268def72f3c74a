package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/phocus/phocus/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusForError maps the service error taxonomy onto HTTP statuses.
// Anything unrecognized is treated as a store/internal failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrGoalNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrGroupNotFound),
		errors.Is(err, apperrors.ErrRewardNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrGateDenied),
		errors.Is(err, apperrors.ErrGoalCompleted),
		errors.Is(err, apperrors.ErrLimitExceeded):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientXP),
		errors.Is(err, apperrors.ErrNotGroupMember):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotGroupAdmin):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
