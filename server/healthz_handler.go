package server

import "net/http"

// HealthzHandler is a zero-dependency liveness probe: standard operational
// surface, not an OAuth concern.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
