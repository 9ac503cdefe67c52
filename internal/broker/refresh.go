package broker

import (
	"context"
	"net/url"
	"time"

	"github.com/cloudcreds/storage-oauth-broker/internal/brokererr"
	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
	"github.com/cloudcreds/storage-oauth-broker/internal/cryptostore"
)

// Refresh converts an AuthId into a short-lived access token, dispatching by
// the V1/V2 prefix and serving from the access-token cache when possible.
func (s *Service) Refresh(ctx context.Context, authID string) (RefreshResult, error) {
	if isV2(authID) {
		return s.refreshV2(ctx, authID)
	}
	return s.refreshV1(ctx, authID)
}

func (s *Service) refreshV2(ctx context.Context, authID string) (RefreshResult, error) {
	parsed, err := parseV2(authID)
	if err != nil {
		return RefreshResult{}, err
	}

	svc, ok := s.catalog.Get(parsed.ServiceID)
	if !ok {
		return RefreshResult{}, brokererr.New(brokererr.KindBadRequest, "unknown service id")
	}
	if len(parsed.RefreshToken) < minRefreshTokenLength {
		return RefreshResult{}, brokererr.Wrap(brokererr.KindBadRequest, "refresh token too short", brokererr.ErrRefreshTokenTooShort)
	}

	key := cacheKeyV2(parsed.RefreshToken, parsed.ServiceID)
	if cached, ok := s.freshCacheEntry(key); ok {
		return s.toRefreshResult(cached), nil
	}

	result, err := s.coalescedUpstreamRefresh(ctx, key, svc, parsed.RefreshToken)
	if err != nil {
		return RefreshResult{}, err
	}
	return s.toRefreshResult(result), nil
}

func (s *Service) refreshV1(ctx context.Context, authID string) (RefreshResult, error) {
	if !s.HasStorage() {
		return RefreshResult{}, brokererr.New(brokererr.KindBadRequest, "no credential store configured")
	}
	parsed, err := parseV1(authID)
	if err != nil {
		return RefreshResult{}, err
	}

	key := cacheKeyV1(parsed.Password, parsed.KeyID)
	if cached, ok := s.freshCacheEntry(key); ok {
		return s.toRefreshResult(cached), nil
	}

	entry, err := s.store.Get(parsed.KeyID, parsed.Password)
	if err != nil {
		return RefreshResult{}, brokererr.WithReason(brokererr.KindUnauthorized, "decrypting stored entry failed", "Invalid key or password")
	}

	svc, ok := s.catalog.Get(entry.ServiceID)
	if !ok {
		return RefreshResult{}, brokererr.New(brokererr.KindBadRequest, "unknown service id")
	}
	if len(entry.RefreshToken) < minRefreshTokenLength {
		return RefreshResult{}, brokererr.Wrap(brokererr.KindBadRequest, "refresh token too short", brokererr.ErrRefreshTokenTooShort)
	}

	resp, err := s.upstreamRefresh(ctx, svc, entry.RefreshToken)
	if err != nil {
		return RefreshResult{}, err
	}

	ttl := cacheTTL(resp.ExpiresIn)
	cached := AccessTokenEntry{
		Token:     resp.AccessToken,
		ExpiresAt: s.now().Add(ttl),
		ServiceID: svc.ID,
	}
	s.accessTokens.Set(cached, key, ttl)

	s.rewriteStoredEntry(parsed.KeyID, parsed.Password, entry, resp)

	return s.toRefreshResult(cached), nil
}

// rewriteStoredEntry persists the rotated refresh token, preserving any
// field the upstream response omitted (an empty access_token or
// refresh_token means "unchanged").
func (s *Service) rewriteStoredEntry(keyID, password string, entry *cryptostore.StoredEntry, resp providerTokenResponse) {
	updated := *entry
	if resp.AccessToken != "" {
		updated.AccessToken = resp.AccessToken
	}
	if resp.RefreshToken != "" {
		updated.RefreshToken = resp.RefreshToken
	}
	updated.Expires = s.now().Unix() + expirySeconds(resp)
	updated.Json = resp.raw
	_ = s.store.Update(keyID, password, &updated)
}

// freshCacheEntry returns a cached access token only if it still has more
// than refreshFreshWindow of validity remaining.
func (s *Service) freshCacheEntry(key string) (AccessTokenEntry, bool) {
	entry, ok := s.accessTokens.Get(key)
	if !ok {
		return AccessTokenEntry{}, false
	}
	if s.now().Add(refreshFreshWindow).After(entry.ExpiresAt) {
		return AccessTokenEntry{}, false
	}
	return entry, true
}

// coalescedUpstreamRefresh uses singleflight so that concurrent cache misses
// for the same key collapse into a single upstream call; this is the
// refresh-coalescing enhancement the design explicitly invites.
func (s *Service) coalescedUpstreamRefresh(ctx context.Context, key string, svc catalog.ServiceConfig, refreshToken string) (AccessTokenEntry, error) {
	v, err, _ := s.refreshGroup.Do(key, func() (interface{}, error) {
		resp, err := s.upstreamRefresh(ctx, svc, refreshToken)
		if err != nil {
			return nil, err
		}
		ttl := cacheTTL(resp.ExpiresIn)
		entry := AccessTokenEntry{
			Token:     resp.AccessToken,
			ExpiresAt: s.now().Add(ttl),
			ServiceID: svc.ID,
		}
		s.accessTokens.Set(entry, key, ttl)
		return entry, nil
	})
	if err != nil {
		return AccessTokenEntry{}, err
	}
	return v.(AccessTokenEntry), nil
}

// upstreamRefresh issues the §4.5 upstream refresh POST.
func (s *Service) upstreamRefresh(ctx context.Context, svc catalog.ServiceConfig, refreshToken string) (providerTokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", svc.ClientID)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")
	if svc.ClientSecret != "" {
		form.Set("client_secret", svc.ClientSecret)
	}
	if !svc.NoRedirectURIForRefreshRequest {
		form.Set("redirect_uri", svc.RedirectURI)
	}

	body, err := s.postForm(ctx, svc.AuthURL, form)
	if err != nil {
		return providerTokenResponse{}, err
	}
	resp := parseTokenResponse(body)
	if resp.AccessToken == "" {
		return providerTokenResponse{}, brokererr.New(brokererr.KindUpstreamFailure, "upstream refresh returned no access token")
	}
	return resp, nil
}

func (s *Service) toRefreshResult(entry AccessTokenEntry) RefreshResult {
	remaining := int64(entry.ExpiresAt.Sub(s.now()).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return RefreshResult{
		AccessToken: entry.Token,
		ExpiresIn:   remaining,
		ServiceID:   entry.ServiceID,
	}
}

// cacheTTL returns the window the access-token cache holds an entry for:
// the provider's reported validity minus accessTokenCacheSkew.
func cacheTTL(expiresIn int64) time.Duration {
	ttl := time.Duration(expiresIn)*time.Second - accessTokenCacheSkew
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}
