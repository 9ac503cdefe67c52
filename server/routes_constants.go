package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex         = "/"
	RouteLogin         = "/login"
	RouteLoggedIn      = "/logged-in"
	RouteCliToken      = "/cli-token"
	RouteCliTokenLogin = "/cli-token-login"
	RouteFetch         = "/fetch"
	RoutePrivacyPolicy = "/privacy-policy"
	RouteRevoke        = "/revoke"
	RouteRevoked       = "/revoked"
	RouteRefresh       = "/refresh"

	// Operational surface, not part of the OAuth flow.
	RouteHealthz = "/healthz"

	// Static Asset Routes (patterns)
	RouteWellKnown = "/.well-known/"
	RouteStatic    = "/{file}"
)
