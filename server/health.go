package server

import (
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/transit-query/engine"
)

type healthResponse struct {
	Status    string        `json:"status"`
	Dataset   engine.Status `json:"dataset"`
	Timestamp time.Time     `json:"timestamp"`
}

// handleHealth reports 503 until the first dataset is published.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Status()
	resp := healthResponse{Status: "ok", Dataset: st, Timestamp: time.Now().UTC()}
	code := http.StatusOK
	if !st.Loaded {
		resp.Status = "loading"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Reload(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Status())
}
