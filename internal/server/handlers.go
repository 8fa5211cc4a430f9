package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/csheth/legalchain/internal/nda"
)

type generateResponse struct {
	NDA string `json:"nda"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var input nda.FormInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&input); err != nil {
		logOperationFailure(r, http.StatusBadRequest, "decode request", err)
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := input.Validate(); err != nil {
		logOperationFailure(r, http.StatusBadRequest, "validate request", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.drafter == nil {
		logOperationFailure(r, http.StatusInternalServerError, "draft nda", errors.New("no drafter configured"))
		writeError(w, http.StatusInternalServerError, FailureMessage)
		return
	}

	text, err := h.drafter.DraftNDA(ctx, input)
	if err != nil {
		logOperationFailure(r, http.StatusInternalServerError, "draft nda", err)
		writeError(w, http.StatusInternalServerError, FailureMessage)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{NDA: text})
}

func logOperationFailure(r *http.Request, statusCode int, operation string, err error) {
	fields := []any{
		"operation", operation,
		"outcome", "failure",
		"status_code", statusCode,
		"request_id", requestIDFromContext(r.Context()),
		"error", err.Error(),
	}
	if statusCode >= 500 {
		httpLogger().ErrorContext(r.Context(), "generate failed", fields...)
		return
	}
	httpLogger().WarnContext(r.Context(), "generate rejected", fields...)
}
