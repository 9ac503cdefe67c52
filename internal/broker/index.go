package broker

import "github.com/cloudcreds/storage-oauth-broker/internal/catalog"

// ServiceLink is one row of the index listing: a service plus the
// already-built URL the template should anchor to.
type ServiceLink struct {
	Service catalog.ServiceConfig
	URL     string
}

// PreRegisterFetchToken honors an Index-page `token` query parameter: if
// longer than minFetchTokenLength, it creates an empty, pending FetchToken
// entry under that key so a later /fetch poll has something to find.
func (s *Service) PreRegisterFetchToken(token string) {
	if len(token) <= minFetchTokenLength {
		return
	}
	s.fetchTokens.Set(FetchToken{}, token, FetchTokenPendingTTL)
}

// ListServices returns the catalog entries visible on the index page: all
// matches for typeFilter if non-empty, otherwise every non-hidden service.
// The caller supplies linkFor to build each row's href (depends on whether
// the HTTP query string carries a token).
func (s *Service) ListServices(typeFilter string, linkFor func(catalog.ServiceConfig) string) []ServiceLink {
	var out []ServiceLink
	for _, svc := range s.catalog.All() {
		if typeFilter != "" {
			if svc.ID != typeFilter {
				continue
			}
		} else if svc.Hidden {
			continue
		}
		out = append(out, ServiceLink{Service: svc, URL: linkFor(svc)})
	}
	return out
}
