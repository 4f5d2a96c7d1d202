// Package service wires the calculators and the store behind an HTTP JSON
// API. Services validate input, call the pure calculator functions, and map
// engine errors onto HTTP status codes; they never do money math themselves.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taihartman/splitledger/internal/calculator"
	"github.com/taihartman/splitledger/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps engine errors to status codes: validation problems are the
// caller's fault, broken invariants are ours.
func writeError(w http.ResponseWriter, err error) {
	var validationErr calculator.ValidationError
	var invariantErr calculator.InvariantError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &invariantErr):
		slog.Error("Calculation invariant violated", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		slog.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return calculator.ValidationError{Msg: "invalid request body: " + err.Error()}
	}
	return nil
}
