package server

import (
	"net/http"
	"net/url"

	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
	"github.com/cloudcreds/storage-oauth-broker/internal/renderer"
)

// IndexHandler implements spec.md §4.4.1: optionally pre-registers a fetch
// token, lists services (filtered by ?type or excluding hidden ones), and
// renders a link to either the cli-token form or the login redirect for
// each one.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		token := q.Get("token")
		typeFilter := q.Get("type")
		redir := q.Get("redir")

		if len(token) > 8 {
			s.broker.PreRegisterFetchToken(token)
		}

		links := s.broker.ListServices(typeFilter, func(svc catalog.ServiceConfig) string {
			return indexRowURL(svc, token, redir)
		})

		rows := make([]renderer.ServiceRow, 0, len(links))
		for _, link := range links {
			rows = append(rows, renderer.ServiceRow{
				ID:         link.Service.ID,
				Name:       link.Service.Name,
				BrandImage: link.Service.BrandImage,
				Notes:      link.Service.Notes,
				URL:        link.URL,
			})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.Index(w, renderer.IndexData{AppName: s.appName, Services: rows}); err != nil {
			s.logger.Error().Err(err).Msg("rendering index page")
		}
	}
}

func indexRowURL(svc catalog.ServiceConfig, token, redir string) string {
	base := RouteLogin
	if svc.CliToken {
		base = RouteCliToken
	}
	q := url.Values{}
	q.Set("id", svc.ID)
	if token != "" {
		q.Set("token", token)
	}
	if redir != "" {
		q.Set("redir", redir)
	}
	return base + "?" + q.Encode()
}
