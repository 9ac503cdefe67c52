package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/cloudcreds/storage-oauth-broker/internal/broker"
	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
	"github.com/cloudcreds/storage-oauth-broker/internal/cryptostore"
	"github.com/cloudcreds/storage-oauth-broker/internal/httpclient"
	"github.com/cloudcreds/storage-oauth-broker/internal/renderer"
	"github.com/cloudcreds/storage-oauth-broker/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, store *cryptostore.Store, authURL string) *server.Server {
	t.Helper()
	cat := catalog.New(map[string]catalog.ServiceConfig{
		"gd": {
			ID:           "gd",
			Name:         "Google Drive",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			AuthURL:      authURL,
			LoginURL:     "https://accounts.google.com/o/oauth2/auth",
			Scope:        "drive.file",
			RedirectURI:  "https://example.com/logged-in",
			ExtraURL:     "&access_type=offline&approval_prompt=force",
		},
	})
	client := httpclient.New()
	t.Cleanup(client.Stop)
	brokerSvc := broker.New(cat, store, client, "TestApp")

	rend, err := renderer.NewHTML()
	require.NoError(t, err)

	return server.New(server.Config{AppName: "TestApp"}, brokerSvc, rend, zerolog.Nop())
}

func tokenStub(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestHappyPathV1Login covers spec.md §8 scenario S1: a full browser-style
// round trip from /login through /logged-in issues a V1 AuthId backed by a
// StoredEntry on disk.
func TestHappyPathV1Login(t *testing.T) {
	upstream := tokenStub(t, `{"access_token":"A","refresh_token":"R","expires_in":3600}`)
	dir := t.TempDir()
	store, err := cryptostore.New(dir)
	require.NoError(t, err)
	s := newTestServer(t, store, upstream.URL)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login?id=gd", nil)
	s.ServeHTTP(rr, req)
	require.Equal(t, http.StatusFound, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	rr2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/logged-in?state="+state+"&code=C", nil)
	s.ServeHTTP(rr2, req2)
	require.Equal(t, http.StatusOK, rr2.Code)

	page, err := io.ReadAll(rr2.Body)
	require.NoError(t, err)
	require.Contains(t, string(page), ":")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Contains(t, string(page), files[0].Name()+":")
}

// TestRefreshCacheHitAvoidsSecondUpstreamCall covers S3: two /refresh calls
// for the same AuthId within the cache window produce only one upstream
// call and the same access token both times.
func TestRefreshCacheHitAvoidsSecondUpstreamCall(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"A","expires_in":3600}`))
	}))
	t.Cleanup(upstream.Close)

	s := newTestServer(t, nil, upstream.URL)
	authID := "v2:gd:refresh-token-value"

	var firstToken string
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/refresh?authid="+authID, nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var body refreshBody
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		require.Equal(t, "A", body.AccessToken)
		if i == 0 {
			firstToken = body.AccessToken
		} else {
			require.Equal(t, firstToken, body.AccessToken)
		}
	}
	require.EqualValues(t, 1, calls)
}

type refreshBody struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires"`
	Type        string `json:"type"`
}

// TestRevokeV2IsRejected covers S6.
func TestRevokeV2IsRejected(t *testing.T) {
	s := newTestServer(t, nil, "https://unused.example")

	form := url.Values{}
	form.Set("authid", "v2:gd:some-refresh-token")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/revoked", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "de-authorize the application on the storage providers website")
}

// TestFetchRendezvousAcrossDevices covers S5: index pre-registers a fetch
// token, login binds it to the state, and completing login fulfills it.
func TestFetchRendezvousAcrossDevices(t *testing.T) {
	upstream := tokenStub(t, `{"access_token":"A","refresh_token":"R","expires_in":3600}`)
	s := newTestServer(t, nil, upstream.URL)

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?token=abcdefghij", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr2 := httptest.NewRecorder()
	s.ServeHTTP(rr2, httptest.NewRequest(http.MethodGet, "/login?id=gd&token=abcdefghij", nil))
	require.Equal(t, http.StatusFound, rr2.Code)
	loc, err := url.Parse(rr2.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")

	rr3 := httptest.NewRecorder()
	s.ServeHTTP(rr3, httptest.NewRequest(http.MethodGet, "/logged-in?state="+state+"&code=C", nil))
	require.Equal(t, http.StatusOK, rr3.Code)

	rr4 := httptest.NewRecorder()
	s.ServeHTTP(rr4, httptest.NewRequest(http.MethodGet, "/fetch?token=abcdefghij", nil))
	require.Equal(t, http.StatusOK, rr4.Code)
	var fetchBody map[string]string
	require.NoError(t, json.NewDecoder(rr4.Body).Decode(&fetchBody))
	require.Contains(t, fetchBody["authid"], "v2:gd:R")
}

func TestHealthzReportsOK(t *testing.T) {
	s := newTestServer(t, nil, "https://unused.example")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestRefreshRejectsUnsupportedMethod(t *testing.T) {
	s := newTestServer(t, nil, "https://unused.example")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/refresh", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
