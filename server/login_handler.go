package server

import (
	"errors"
	"net/http"

	"github.com/cloudcreds/storage-oauth-broker/internal/brokererr"
)

// StartLoginHandler implements spec.md §4.4.2: resolve the service, bind an
// optional fetch token, and 302 the browser to the provider's authorize URL.
func (s *Server) StartLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		serviceID := q.Get("id")
		fetchToken := q.Get("token")

		redirectURL, err := s.broker.StartLogin(serviceID, fetchToken)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// writeError maps a brokererr.Error to its HTTP status; any other error is
// treated as an internal failure. Matches spec.md §7's propagation policy:
// upstream-provider bodies are never forwarded verbatim, only a mapped
// status and a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var be *brokererr.Error
	if errors.As(err, &be) {
		if be.Reason != "" {
			w.Header().Set("X-Reason", be.Reason)
		}
		http.Error(w, be.Message, be.Kind.StatusCode())
		return
	}
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
