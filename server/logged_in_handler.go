package server

import (
	"net/http"

	"github.com/cloudcreds/storage-oauth-broker/internal/broker"
	"github.com/cloudcreds/storage-oauth-broker/internal/renderer"
)

// LoggedInHandler implements spec.md §4.4.3, the central OAuth transition:
// it flattens the callback query string into the broker's input shape and
// renders whatever CompleteLogin returns.
func (s *Server) LoggedInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		result, err := s.broker.CompleteLogin(r.Context(), broker.CompleteLoginInput{
			State: q.Get("state"),
			Code:  q.Get("code"),
			Token: q.Get("token"),
			Query: flattenQuery(q),
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.renderLoggedIn(w, result)
	}
}

func (s *Server) renderLoggedIn(w http.ResponseWriter, result broker.CompleteLoginResult) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.LoggedIn(w, renderer.LoggedInData{
		AppName:        s.appName,
		ServiceName:    result.ServiceName,
		AuthID:         result.AuthID,
		ErrorMessage:   result.ErrorMessage,
		DeAuthLink:     result.DeAuthLink,
		AdditionalData: result.AdditionalData,
	}); err != nil {
		s.logger.Error().Err(err).Msg("rendering logged-in page")
	}
}

// flattenQuery reduces a url.Values into single-valued entries, which is
// all CompleteLogin needs to harvest AdditionalElements and the pCloud
// hostname override.
func flattenQuery(q map[string][]string) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
