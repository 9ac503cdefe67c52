package broker

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudcreds/storage-oauth-broker/internal/brokererr"
	"github.com/tidwall/gjson"
)

// cacheKeyV1 and cacheKeyV2 reproduce the spec's hashing scheme for the access-token cache:
// SHA-256 of the refresh-token (or V1 password) material, standard base64,
// combined with the path-shaped key the source uses.
func cacheKeyV1(password, keyID string) string {
	return fmt.Sprintf("/v1/token?password=%s&id=%s", hashMaterial(password), keyID)
}

func cacheKeyV2(refreshToken, serviceID string) string {
	return fmt.Sprintf("/v2/token?id=%s&service=%s", hashMaterial(refreshToken), serviceID)
}

func hashMaterial(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// postForm submits form as application/x-www-form-urlencoded to target and
// returns the raw response body. Non-2xx responses are reported as
// UpstreamFailure without forwarding the upstream body to the caller.
func (s *Service) postForm(ctx context.Context, target string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, brokererr.Wrap(brokererr.KindUpstreamFailure, "building upstream request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, brokererr.Wrap(brokererr.KindUpstreamFailure, "calling upstream provider", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, brokererr.Wrap(brokererr.KindUpstreamFailure, "reading upstream response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, brokererr.New(brokererr.KindUpstreamFailure, "upstream provider returned an error status")
	}
	return body, nil
}

// providerTokenResponse is the subset of a provider token response the
// broker cares about, extracted with gjson since providers disagree on the
// full response shape. ExpiresIn and Expires are kept separate — some
// providers send both, disagreeing on which is authoritative — and
// expirySeconds (complete_login.go) takes the larger of the two, with a
// floor of 1000 seconds, for a StoredEntry's Expires.
type providerTokenResponse struct {
	raw          string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Expires      int64
}

func parseTokenResponse(body []byte) providerTokenResponse {
	raw := string(body)
	result := gjson.ParseBytes(body)
	return providerTokenResponse{
		raw:          raw,
		AccessToken:  result.Get("access_token").String(),
		RefreshToken: result.Get("refresh_token").String(),
		ExpiresIn:    result.Get("expires_in").Int(),
		Expires:      result.Get("expires").Int(),
	}
}
