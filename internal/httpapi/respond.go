package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/resilience"
)

type errorBody struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// writeError maps an error's kind to an HTTP status. Upstream causes are
// surfaced in the body; internal ones get a generic message.
func writeError(w http.ResponseWriter, err error) {
	kind := resilience.KindOf(err)

	status := http.StatusBadGateway
	msg := err.Error()
	switch kind {
	case resilience.KindInput:
		status = http.StatusBadRequest
	case resilience.KindNotFound:
		status = http.StatusNotFound
	case resilience.KindConfig:
		status = http.StatusInternalServerError
		msg = "server misconfigured"
	}

	writeJSON(w, status, errorBody{Kind: string(kind), Error: msg})
}

func writeInput(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Kind: string(resilience.KindInput), Error: msg})
}
