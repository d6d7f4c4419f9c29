package server

import (
	"encoding/json"
	"net/http"
)

// Every response uses one of two envelopes so integrations can parse
// blindly: {"data": ...} on success, {"error": ..., "code": ...} on
// failure.
type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes returned by the API.
const (
	codeBadRequest    = "bad-request"
	codeInvalidFilter = "invalid-filter"
	codeUnknownEntry  = "unknown-entry"
	codeNotReady      = "not-ready"
	codeRateLimited   = "rate-limited"
	codeInternal      = "internal"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorEnvelope{Error: msg, Code: code})
}
