// Package broker implements the OAuth authorization-code broker's business
// logic: the state machine driving login/callback/fetch/refresh/revoke, kept
// free of HTTP concerns so it can be exercised directly from tests. The
// server package is the HTTP-facing adapter over this package.
package broker

import "time"

const (
	// RequestStateTTL bounds how long a StartLogin state key is honored
	// before the provider must have called back.
	RequestStateTTL = 10 * time.Minute

	// FetchTokenPendingTTL is the window during which a pre-registered
	// fetch token waits for CompleteLogin to fill it in.
	FetchTokenPendingTTL = 5 * time.Minute

	// FetchTokenCompletedTTL is the window during which a completed fetch
	// token holds its AuthId for a poller to collect.
	FetchTokenCompletedTTL = 30 * time.Second

	// accessTokenCacheSkew is subtracted from a provider's reported
	// validity window so the cache never hands out a token that expires
	// before the caller can use it.
	accessTokenCacheSkew = 10 * time.Second

	// minFetchTokenLength is the length a caller-supplied fetch-token key
	// must exceed to be honored; keys of this length or shorter are ignored.
	minFetchTokenLength = 8

	// minRefreshTokenLength rejects obviously-truncated refresh tokens
	// before spending an upstream round trip on them.
	minRefreshTokenLength = 6

	// minCliTokenLength is the shortest accepted raw cli-token blob.
	minCliTokenLength = 6

	// refreshFreshWindow is how much remaining validity a cached access
	// token must have to be served without a fresh upstream call.
	refreshFreshWindow = 30 * time.Second
)

// RequestState is the transient record created by StartLogin and consumed
// by CompleteLogin.
type RequestState struct {
	ServiceID     string
	FetchTokenKey string
	UseV2         bool
}

// FetchToken is an optional rendezvous slot a CLI client pre-registers so a
// poller on another device can retrieve the AuthId a browser flow produces.
type FetchToken struct {
	AuthID       string
	ErrorMessage string
}

// Completed reports whether this slot has been filled in by CompleteLogin.
func (f FetchToken) Completed() bool {
	return f.AuthID != "" || f.ErrorMessage != ""
}

// AccessTokenEntry is a cached short-lived access token, keyed by a hash of
// the refresh token plus service id (V2) or of the password plus keyId (V1);
// see cacheKeyV1 and cacheKeyV2.
type AccessTokenEntry struct {
	Token     string
	ExpiresAt time.Time
	ServiceID string
}

// AdditionalData is the echoed-back callback query-parameter map rendered
// alongside a completed login.
type AdditionalData map[string]string

// RefreshResult is what both refresh paths return to their HTTP handler.
type RefreshResult struct {
	AccessToken string
	ExpiresIn   int64 // seconds remaining, as told to the caller
	ServiceID   string
}
