package server

import (
	"encoding/json"
	"net/http"
)

type refreshResponseBody struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires"`
	Type        string `json:"type"`
}

// RefreshHandler implements spec.md §4.4.8 / §4.5: accept an AuthId from
// form, query, or the X-AuthID header on GET or POST, and return a fresh
// access token as JSON.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		authID := refreshAuthID(r)
		if authID == "" {
			http.Error(w, "missing authid", http.StatusBadRequest)
			return
		}

		result, err := s.broker.Refresh(r.Context(), authID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(refreshResponseBody{
			AccessToken: result.AccessToken,
			ExpiresIn:   result.ExpiresIn,
			Type:        result.ServiceID,
		})
	}
}

// refreshAuthID collects the authid from, in order: the X-AuthID header,
// the POST form, and the query string.
func refreshAuthID(r *http.Request) string {
	if authID := r.Header.Get("X-AuthID"); authID != "" {
		return authID
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			if authID := r.PostForm.Get("authid"); authID != "" {
				return authID
			}
		}
	}
	return r.URL.Query().Get("authid")
}
