package httpclient_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudcreds/storage-oauth-broker/internal/httpclient"
	"github.com/stretchr/testify/require"
)

func TestDoIssuesRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := httpclient.New()
	defer c.Stop()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStopReturnsAfterRecyclerExits(t *testing.T) {
	c := httpclient.New()
	c.Stop()
}
