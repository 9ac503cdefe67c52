package broker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/cloudcreds/storage-oauth-broker/internal/brokererr"
	"github.com/cloudcreds/storage-oauth-broker/internal/catalog"
)

// CliTokenForm resolves the service shown by GET /cli-token.
func (s *Service) CliTokenForm(serviceID string) (catalog.ServiceConfig, error) {
	svc, ok := s.catalog.Get(serviceID)
	if !ok {
		return catalog.ServiceConfig{}, brokererr.New(brokererr.KindBadRequest, "unknown service id")
	}
	return svc, nil
}

// cliTokenBlob is the JSON payload embedded in the user-supplied,
// base64url-encoded cli-token credential.
type cliTokenBlob struct {
	Username  string `json:"username"`
	AuthToken string `json:"auth_token"`
}

// CliTokenLogin implements the Jottacloud-style resource-owner password
// grant: the user pastes a base64url blob containing their username and a
// personal auth token instead of completing a browser redirect.
func (s *Service) CliTokenLogin(ctx context.Context, serviceID, rawToken, fetchTokenKey string) (CompleteLoginResult, error) {
	if len(rawToken) < minCliTokenLength {
		return CompleteLoginResult{}, brokererr.New(brokererr.KindBadRequest, "token too short")
	}

	svc, ok := s.catalog.Get(serviceID)
	if !ok || !svc.CliToken {
		return CompleteLoginResult{}, brokererr.New(brokererr.KindBadRequest, "unknown or unsupported service")
	}

	blob, err := decodeCliTokenBlob(rawToken)
	if err != nil {
		return CompleteLoginResult{}, brokererr.Wrap(brokererr.KindBadRequest, "malformed cli token", err)
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", svc.ClientID)
	form.Set("scope", svc.Scope)
	form.Set("username", blob.Username)
	form.Set("password", blob.AuthToken)

	body, err := s.postForm(ctx, svc.AuthURL, form)
	if err != nil {
		return s.completeLoginError(svc), nil
	}
	resp := parseTokenResponse(body)
	if resp.AccessToken == "" {
		return s.completeLoginError(svc), nil
	}

	authID := buildV2(svc.ID, resp.AccessToken)
	s.completeFetchToken(fetchTokenKey, authID, "")

	return CompleteLoginResult{
		AuthID:      authID,
		ServiceName: svc.Name,
	}, nil
}

// decodeCliTokenBlob reverses the base64url-without-padding encoding and
// parses the resulting JSON document.
func decodeCliTokenBlob(raw string) (cliTokenBlob, error) {
	std := strings.NewReplacer("-", "+", "_", "/").Replace(raw)
	if pad := len(std) % 4; pad != 0 {
		std += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		return cliTokenBlob{}, err
	}
	var blob cliTokenBlob
	if err := json.Unmarshal(decoded, &blob); err != nil {
		return cliTokenBlob{}, err
	}
	return blob, nil
}
