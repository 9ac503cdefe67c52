package broker

import (
	"github.com/cloudcreds/storage-oauth-broker/internal/brokererr"
	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
	"golang.org/x/oauth2"
)

// StartLogin resolves service id, binds an optional fetch token, and returns
// the provider authorize URL to redirect the browser to.
func (s *Service) StartLogin(serviceID, fetchToken string) (redirectURL string, err error) {
	svc, ok := s.catalog.Get(serviceID)
	if !ok {
		return "", brokererr.New(brokererr.KindBadRequest, "unknown service id")
	}

	if fetchToken != "" && !s.fetchTokens.Has(fetchToken) {
		fetchToken = ""
	}

	useV2 := !s.HasStorage() || svc.PreferV2

	state, err := s.newUniqueStateKey()
	if err != nil {
		return "", err
	}
	s.requestStates.Set(RequestState{
		ServiceID:     svc.ID,
		FetchTokenKey: fetchToken,
		UseV2:         useV2,
	}, state, RequestStateTTL)

	return s.authCodeURL(svc, state), nil
}

// newUniqueStateKey generates a state key guaranteed absent from the
// request-state cache at the instant of the check. A collision after 128
// bits of randomness is treated as an internal error.
func (s *Service) newUniqueStateKey() (string, error) {
	state, err := newStateKey()
	if err != nil {
		return "", brokererr.Wrap(brokererr.KindInternal, "generating state key", err)
	}
	if s.requestStates.Has(state) {
		return "", brokererr.New(brokererr.KindConflict, "state key collision")
	}
	return state, nil
}

// authCodeURL builds the provider authorize redirect. The ExtraUrl field is
// a literal, pre-encoded suffix and must not be re-encoded.
func (s *Service) authCodeURL(svc catalog.ServiceConfig, state string) string {
	cfg := &oauth2.Config{
		ClientID:     svc.ClientID,
		ClientSecret: svc.ClientSecret,
		Scopes:       []string{svc.Scope},
		RedirectURL:  svc.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL: svc.LoginURL,
		},
	}
	return cfg.AuthCodeURL(state) + svc.ExtraURL
}
