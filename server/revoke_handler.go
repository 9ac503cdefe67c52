package server

import (
	"net/http"

	"github.com/cloudcreds/storage-oauth-broker/internal/broker"
	"github.com/cloudcreds/storage-oauth-broker/internal/renderer"
)

// RevokeFormHandler implements the GET half of spec.md §4.4.7: a static
// form asking for an AuthId.
func (s *Server) RevokeFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.Revoke(w, renderer.RevokeFormData{AppName: s.appName}); err != nil {
			s.logger.Error().Err(err).Msg("rendering revoke form")
		}
	}
}

// RevokedHandler implements the POST half of spec.md §4.4.7. The success
// path's HTTP status is a deliberate, operator-overridable policy choice;
// this implementation keeps the historical 400-on-success behavior
// (see DESIGN.md's "revoke success status" entry) rather than silently
// correcting what the spec calls a bug. A genuine internal failure
// (filesystem error on delete) is a different thing entirely and still
// reports 500, per spec.md §7.
func (s *Server) RevokedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}
		authID := r.PostForm.Get("authid")
		if authID == "" {
			authID = r.Header.Get("X-AuthID")
		}

		result := s.broker.Revoke(authID)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(revokeStatusCode(result.Outcome))
		if err := s.renderer.Revoked(w, renderer.RevokedData{AppName: s.appName, Message: result.Message}); err != nil {
			s.logger.Error().Err(err).Msg("rendering revoked page")
		}
	}
}

// revokeStatusCode maps a RevokeOutcome to its HTTP status. Every branch
// except the internal-error one deliberately reports 400, including the
// success branch (see DESIGN.md); RevokeInternalError is a real server
// fault and reports 500.
func revokeStatusCode(outcome broker.RevokeOutcome) int {
	if outcome == broker.RevokeInternalError {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
