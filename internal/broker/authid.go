package broker

import (
	"strings"

	"github.com/cloudcreds/storage-oauth-broker/internal/brokererr"
)

const v2Prefix = "v2:"

// authIDV1 is a decoded <keyId>:<password> credential.
type authIDV1 struct {
	KeyID    string
	Password string
}

// authIDV2 is a decoded v2:<serviceId>:<refreshToken> credential.
type authIDV2 struct {
	ServiceID    string
	RefreshToken string
}

func isV2(authID string) bool {
	return strings.HasPrefix(authID, v2Prefix)
}

func buildV1(keyID, password string) string {
	return keyID + ":" + password
}

func buildV2(serviceID, refreshToken string) string {
	return v2Prefix + serviceID + ":" + refreshToken
}

// parseV1 splits a <keyId>:<password> AuthId. Malformed input (not exactly
// two parts) is rejected.
func parseV1(authID string) (authIDV1, error) {
	parts := strings.SplitN(authID, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return authIDV1{}, brokererr.WithReason(brokererr.KindBadRequest, "malformed AuthId", "expected <keyId>:<password>")
	}
	return authIDV1{KeyID: parts[0], Password: parts[1]}, nil
}

// parseV2 splits a v2:<serviceId>:<refreshToken> AuthId. Malformed input
// (not exactly three parts) is rejected.
func parseV2(authID string) (authIDV2, error) {
	parts := strings.SplitN(authID, ":", 3)
	if len(parts) != 3 || parts[0] != "v2" || parts[1] == "" || parts[2] == "" {
		return authIDV2{}, brokererr.WithReason(brokererr.KindBadRequest, "malformed AuthId", "expected v2:<serviceId>:<refreshToken>")
	}
	return authIDV2{ServiceID: parts[1], RefreshToken: parts[2]}, nil
}
