package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/quollify/gatekey/pkg/slogx"
)

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slogx.FromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// WriteError writes a JSON error body with the given status code.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, r, status, errorBody{Error: msg})
}

// NoCache marks token-bearing responses as non-cacheable.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
