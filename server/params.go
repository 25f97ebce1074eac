package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/transit-query/engine"
)

type errorResponse struct {
	Error string `json:"error"`
	Param string `json:"param,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var invalid *engine.InvalidParameterError
	var notFound *engine.NotFoundError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Param: invalid.Param})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrNoDataset):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func param(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// optionalFloat returns nil for an absent parameter.
func optionalFloat(r *http.Request, name string) (*float64, error) {
	s := param(r, name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &engine.InvalidParameterError{Param: name, Reason: "must be a number"}
	}
	return &v, nil
}

// optionalInt returns 0 for an absent parameter.
func optionalInt(r *http.Request, name string) (int, error) {
	s := param(r, name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, &engine.InvalidParameterError{Param: name, Reason: "must be a non-negative integer"}
	}
	return v, nil
}
