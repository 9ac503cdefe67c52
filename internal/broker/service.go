package broker

import (
	"time"

	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
	"github.com/cloudcreds/storage-oauth-broker/internal/cryptostore"
	"github.com/cloudcreds/storage-oauth-broker/internal/httpclient"
	"github.com/cloudcreds/storage-oauth-broker/internal/secretgen"
	"github.com/cloudcreds/storage-oauth-broker/internal/ttlcache"
	"golang.org/x/sync/singleflight"
)

// Service is the broker's business logic: the OAuth state machine, the
// credential store, and the refresh/revoke surface. It holds no HTTP
// concerns — server.Server adapts it to net/http.
type Service struct {
	catalog    *catalog.Catalog
	store      *cryptostore.Store // nil means no storage configured: V2-only mode
	httpClient *httpclient.Client
	passwords  *secretgen.Generator

	requestStates *ttlcache.Cache[RequestState]
	fetchTokens   *ttlcache.Cache[FetchToken]
	accessTokens  *ttlcache.Cache[AccessTokenEntry]

	refreshGroup singleflight.Group

	appName string
	now     func() time.Time
}

// Option customizes a Service at construction time.
type Option func(*Service)

// WithNow overrides the Service's clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service. store may be nil, in which case every login issues
// a V2 AuthId and revoke is always rejected.
func New(cat *catalog.Catalog, store *cryptostore.Store, client *httpclient.Client, appName string, opts ...Option) *Service {
	s := &Service{
		catalog:       cat,
		store:         store,
		httpClient:    client,
		passwords:     secretgen.New(),
		requestStates: ttlcache.New[RequestState](),
		fetchTokens:   ttlcache.New[FetchToken](),
		accessTokens:  ttlcache.New[AccessTokenEntry](),
		appName:       appName,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.requestStates.SetNow(s.now)
	s.fetchTokens.SetNow(s.now)
	s.accessTokens.SetNow(s.now)
	return s
}

// StartJanitors launches a background expiry sweep on every TTL cache the
// Service owns (request state, fetch tokens, cached access tokens), purely
// to bound memory from abandoned keys. The returned func stops all of them.
func (s *Service) StartJanitors(interval time.Duration) (stop func()) {
	stopRequestStates := s.requestStates.StartJanitor(interval)
	stopFetchTokens := s.fetchTokens.StartJanitor(interval)
	stopAccessTokens := s.accessTokens.StartJanitor(interval)
	return func() {
		stopRequestStates()
		stopFetchTokens()
		stopAccessTokens()
	}
}

// HasStorage reports whether a blob store is configured.
func (s *Service) HasStorage() bool {
	return s.store != nil
}

// Catalog exposes the read-only service catalog, for handlers that need to
// list or look up services directly (e.g. the Index page).
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}
