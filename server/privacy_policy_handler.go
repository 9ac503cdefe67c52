package server

import "net/http"

// PrivacyPolicyHandler implements spec.md §4.4.6: redirect to a configured
// custom URL, or render the static policy page.
func (s *Server) PrivacyPolicyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.privacyPolicyURL != "" {
			http.Redirect(w, r, s.privacyPolicyURL, http.StatusFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.PrivacyPolicy(w, s.appName); err != nil {
			s.logger.Error().Err(err).Msg("rendering privacy policy page")
		}
	}
}
