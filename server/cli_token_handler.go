package server

import (
	"net/http"

	"github.com/cloudcreds/storage-oauth-broker/internal/renderer"
)

// CliTokenFormHandler implements the GET half of spec.md §4.4.4: render a
// form carrying the service id and fetch-token key through to the POST.
func (s *Server) CliTokenFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		serviceID := q.Get("id")

		svc, err := s.broker.CliTokenForm(serviceID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.CliTokenForm(w, renderer.CliTokenFormData{
			AppName:     s.appName,
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			FetchToken:  q.Get("token"),
		}); err != nil {
			s.logger.Error().Err(err).Msg("rendering cli-token form")
		}
	}
}

// CliTokenLoginHandler implements the POST half of spec.md §4.4.4: the
// Jottacloud-style resource-owner password grant.
func (s *Server) CliTokenLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}

		result, err := s.broker.CliTokenLogin(
			r.Context(),
			r.PostForm.Get("id"),
			r.PostForm.Get("token"),
			r.PostForm.Get("fetchtoken"),
		)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.renderLoggedIn(w, result)
	}
}
