package brokererr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/cloudcreds/storage-oauth-broker/internal/brokererr"
	"github.com/stretchr/testify/require"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		kind brokererr.Kind
		want int
	}{
		{brokererr.KindBadRequest, http.StatusBadRequest},
		{brokererr.KindUnauthorized, http.StatusUnauthorized},
		{brokererr.KindMethodNotAllowed, http.StatusMethodNotAllowed},
		{brokererr.KindNotFound, http.StatusNotFound},
		{brokererr.KindConflict, http.StatusInternalServerError},
		{brokererr.KindUpstreamFailure, http.StatusInternalServerError},
		{brokererr.KindInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.kind.StatusCode())
	}
}

func TestWrapPreservesChainForIs(t *testing.T) {
	wrapped := brokererr.Wrap(brokererr.KindUnauthorized, "decrypt failed", brokererr.ErrDecryptingFailed)
	require.True(t, errors.Is(wrapped, brokererr.ErrDecryptingFailed))
}

func TestWithReasonCarriesReason(t *testing.T) {
	err := brokererr.WithReason(brokererr.KindUnauthorized, "bad credential", "Invalid key or password")
	require.Equal(t, "Invalid key or password", err.Reason)
	require.Equal(t, brokererr.KindUnauthorized, err.Kind)
}
