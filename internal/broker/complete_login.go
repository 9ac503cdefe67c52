package broker

import (
	"context"
	"net/url"
	"strings"

	"github.com/cloudcreds/storage-oauth-broker/internal/brokererr"
	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
	"github.com/cloudcreds/storage-oauth-broker/internal/cryptostore"
)

// CompleteLoginInput is the provider callback, reduced to the fields
// CompleteLogin needs. Query holds every callback query parameter
// (single-valued) so the broker can harvest service.AdditionalElements and
// the pCloud-style hostname override without depending on net/http types.
type CompleteLoginInput struct {
	State string
	Code  string
	Token string // optional fetch-token override for redirect_uri
	Query map[string]string
}

// CompleteLoginResult carries everything the renderer needs for the
// logged-in page.
type CompleteLoginResult struct {
	AuthID         string
	ServiceName    string
	DeAuthLink     string
	ErrorMessage   string
	AdditionalData AdditionalData
}

// CompleteLogin is the central OAuth transition: it resolves the pending
// RequestState, exchanges the authorization code for tokens, mints an
// AuthId, and hands it to any waiting fetch-token poller.
func (s *Service) CompleteLogin(ctx context.Context, in CompleteLoginInput) (CompleteLoginResult, error) {
	if in.State == "" || in.Code == "" {
		return CompleteLoginResult{}, brokererr.New(brokererr.KindBadRequest, "missing state or code")
	}

	state, ok := s.requestStates.Get(in.State)
	if !ok {
		return CompleteLoginResult{}, brokererr.New(brokererr.KindBadRequest, "unknown or expired state")
	}

	svc, ok := s.catalog.Get(state.ServiceID)
	if !ok {
		return CompleteLoginResult{}, brokererr.New(brokererr.KindBadRequest, "unknown service id")
	}

	additional := harvestAdditionalData(svc, in.Query)

	redirectURI := svc.RedirectURI
	if in.Token != "" {
		redirectURI = appendQueryParam(redirectURI, "token", in.Token)
	}

	authURL := svc.AuthURL
	if svc.UseHostnameFromCallback {
		if hostname := in.Query["hostname"]; hostname != "" {
			authURL = replaceHost(authURL, hostname)
		}
	}

	form := url.Values{}
	form.Set("client_id", svc.ClientID)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_secret", svc.ClientSecret)
	form.Set("code", in.Code)
	form.Set("grant_type", "authorization_code")

	body, err := s.postForm(ctx, authURL, form)
	if err != nil {
		return s.completeLoginError(svc), nil
	}
	resp := parseTokenResponse(body)

	if svc.AccessTokenOnly {
		if resp.AccessToken == "" {
			return s.completeLoginError(svc), nil
		}
		authID, err := s.mintAuthID(svc, state, resp.AccessToken, resp)
		if err != nil {
			return CompleteLoginResult{}, err
		}
		s.completeFetchToken(state.FetchTokenKey, authID, "")
		return CompleteLoginResult{
			AuthID:         authID,
			ServiceName:    svc.Name,
			AdditionalData: additional,
		}, nil
	}

	if resp.RefreshToken == "" {
		return s.completeLoginError(svc), nil
	}
	authID, err := s.mintAuthID(svc, state, resp.RefreshToken, resp)
	if err != nil {
		return CompleteLoginResult{}, err
	}
	s.completeFetchToken(state.FetchTokenKey, authID, "")
	return CompleteLoginResult{
		AuthID:         authID,
		ServiceName:    svc.Name,
		AdditionalData: additional,
	}, nil
}

func (s *Service) completeLoginError(svc catalog.ServiceConfig) CompleteLoginResult {
	return CompleteLoginResult{
		ErrorMessage: "Server error, you must de-authorize " + s.appName,
		ServiceName:  svc.Name,
		DeAuthLink:   svc.DeAuthLink,
	}
}

// mintAuthID implements §4.4.3 step 11: V2 when no storage is configured or
// the RequestState chose it, otherwise a fresh V1 keyId/password pair backed
// by a newly-written StoredEntry.
func (s *Service) mintAuthID(svc catalog.ServiceConfig, state RequestState, refreshTokenOrAccessToken string, resp providerTokenResponse) (string, error) {
	if state.UseV2 || !s.HasStorage() {
		return buildV2(svc.ID, refreshTokenOrAccessToken), nil
	}

	keyID := newKeyID()
	password, err := s.passwords.Generate()
	if err != nil {
		return "", brokererr.Wrap(brokererr.KindInternal, "generating entry password", err)
	}

	entry := &cryptostore.StoredEntry{
		ServiceID:    svc.ID,
		Expires:      s.now().Unix() + expirySeconds(resp),
		AccessToken:  resp.AccessToken,
		RefreshToken: refreshTokenOrAccessToken,
		Json:         resp.raw,
	}
	if err := s.store.Create(keyID, password, entry); err != nil {
		return "", brokererr.Wrap(brokererr.KindInternal, "writing credential to store", err)
	}
	return buildV1(keyID, password), nil
}

// expirySeconds implements spec.md §4.4.3 step 11: max(resp.expires,
// resp.expires_in, 1000).
func expirySeconds(resp providerTokenResponse) int64 {
	longest := resp.ExpiresIn
	if resp.Expires > longest {
		longest = resp.Expires
	}
	if longest < 1000 {
		longest = 1000
	}
	return longest
}

// completeFetchToken implements the CLI rendezvous hand-off: if a fetch
// token was attached to the RequestState and is still present, it is
// replaced with the completed {AuthId, error} pair and given a short TTL.
func (s *Service) completeFetchToken(key, authID, errMsg string) {
	if key == "" || !s.fetchTokens.Has(key) {
		return
	}
	s.fetchTokens.Set(FetchToken{AuthID: authID, ErrorMessage: errMsg}, key, FetchTokenCompletedTTL)
}

func harvestAdditionalData(svc catalog.ServiceConfig, query map[string]string) AdditionalData {
	if len(svc.AdditionalElements) == 0 {
		return nil
	}
	out := make(AdditionalData)
	for _, name := range svc.AdditionalElements {
		if v := query[name]; v != "" {
			out[name] = v
		}
	}
	return out
}

func appendQueryParam(uri, key, value string) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + key + "=" + url.QueryEscape(value)
}

func replaceHost(rawURL, hostname string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Host = hostname
	return u.String()
}
