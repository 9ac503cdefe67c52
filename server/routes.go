package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, s.IndexHandler())

	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.StartLoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLoggedIn, ChainMiddleware(s.LoggedInHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCliToken, ChainMiddleware(s.CliTokenFormHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteCliTokenLogin, ChainMiddleware(s.CliTokenLoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RoutePrivacyPolicy, ChainMiddleware(s.PrivacyPolicyHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteRevoke, ChainMiddleware(s.RevokeFormHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRevoked, ChainMiddleware(s.RevokedHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("GET "+RouteFetch, ChainMiddleware(s.FetchHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())

	if s.wellKnownDir != "" {
		s.RegisterRouteHandler(RouteWellKnown, http.StripPrefix(RouteWellKnown, http.FileServer(http.Dir(s.wellKnownDir))))
	}

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveStaticHandler(), s.HTMLMiddleWare()...))
}

// serveStaticHandler serves the embedded static asset tree (the stylesheet
// under server/static/).
func (s *Server) serveStaticHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.fileServer.ServeHTTP(w, r)
	}
}
