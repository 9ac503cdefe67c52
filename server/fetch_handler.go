package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cloudcreds/storage-oauth-broker/internal/broker"
)

// FetchHandler implements spec.md §4.4.5: poll a fetch-token key and return
// one of four JSON shapes, optionally JSONP-wrapped.
func (s *Server) FetchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		result := s.broker.Fetch(q.Get("token"))

		body, err := json.Marshal(fetchResponseBody(result))
		if err != nil {
			s.logger.Error().Err(err).Msg("marshaling fetch response")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		callback := q.Get("callback")
		if callback == "" {
			callback = q.Get("jsonp")
		}
		if callback != "" {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			fmt.Fprintf(w, "%s(%s)", callback, body)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(body)
	}
}

func fetchResponseBody(result broker.FetchResult) map[string]string {
	switch result.Status {
	case broker.FetchMissingToken:
		return map[string]string{"error": "Missing token"}
	case broker.FetchNoSuchEntry:
		return map[string]string{"error": "No such entry"}
	case broker.FetchNotReady:
		return map[string]string{"wait": "Not ready"}
	default:
		return map[string]string{"authid": result.AuthID}
	}
}
