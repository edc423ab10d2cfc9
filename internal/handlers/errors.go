package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"merocare/internal/service"
	"merocare/internal/validation"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		slog.Error(logMsg, "error", err)
	}

	writeJSON(w, status, errorBody{Detail: userMsg})
}

// serviceErrors maps service sentinels to a status and client message
var serviceErrors = []struct {
	err    error
	status int
	detail string
}{
	{service.ErrEmailTaken, http.StatusBadRequest, "Email already registered"},
	{service.ErrInvalidCredentials, http.StatusForbidden, ErrInvalidCredentials},
	{service.ErrUnauthenticated, http.StatusUnauthorized, ErrUnauthorized},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrInviteNotFound, http.StatusNotFound, "Invite not found"},
	{service.ErrSelfInvite, http.StatusBadRequest, "You cannot invite yourself"},
	{service.ErrDuplicateInvite, http.StatusConflict, "Invite already sent"},
	{service.ErrNotInviteReceiver, http.StatusForbidden, "You cannot answer this invite"},
	{service.ErrNotSameFamily, http.StatusForbidden, "You are not in the same family group"},
	{service.ErrDiagnosisNotFound, http.StatusNotFound, "Diagnosis not found"},
	{service.ErrNotDiagnosisOwner, http.StatusForbidden, "Not your diagnosis"},
	{service.ErrInvalidVisibility, http.StatusBadRequest, "Visibility must be private or public"},
	{service.ErrNoSymptoms, http.StatusUnprocessableEntity, "At least one symptom is required"},
	{service.ErrDiagnosisUnavailable, http.StatusServiceUnavailable, "Diagnosis service is unavailable, please try again later"},
	{service.ErrRecordNotFound, http.StatusNotFound, "Medical record not found"},
}

// respondWithServiceError writes the response for an error returned by a service
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		respondWithError(w, http.StatusUnprocessableEntity, verr.Error(), "", nil)
		return
	}
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			respondWithError(w, se.status, se.detail, "", nil)
			return
		}
	}
	respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
}
