package broker

import "strings"

// RevokeOutcome distinguishes the revoke-flow branches from §4.4.7. The
// HTTP status for each is a server-package policy decision (see
// DESIGN.md's "revoke success status" open question), not a broker concern.
type RevokeOutcome int

const (
	RevokeRejectedV2 RevokeOutcome = iota
	RevokeMalformed
	RevokeInvalidAuthID
	RevokeInternalError
	RevokeSuccess
)

// RevokeResult carries the outcome and the human-facing message the
// renderer displays.
type RevokeResult struct {
	Outcome RevokeOutcome
	Message string
}

// Revoke destroys the V1 StoredEntry backing authID after proving the
// caller knows its password. V2 AuthIds are always rejected: the broker
// holds no server-side state for them to delete.
func (s *Service) Revoke(authID string) RevokeResult {
	if isV2(authID) {
		return RevokeResult{
			Outcome: RevokeRejectedV2,
			Message: "This AuthId cannot be revoked here; de-authorize the application on the storage providers website.",
		}
	}

	if !s.HasStorage() {
		return RevokeResult{Outcome: RevokeMalformed, Message: "Invalid AuthId"}
	}

	parts := strings.SplitN(authID, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RevokeResult{Outcome: RevokeMalformed, Message: "Invalid AuthId"}
	}
	keyID, password := parts[0], parts[1]

	if _, err := s.store.Get(keyID, password); err != nil {
		return RevokeResult{Outcome: RevokeInvalidAuthID, Message: "Invalid AuthId"}
	}

	if err := s.store.Delete(keyID); err != nil {
		return RevokeResult{Outcome: RevokeInternalError, Message: "Internal error, failed to revoke token"}
	}

	return RevokeResult{Outcome: RevokeSuccess, Message: "Token is revoked"}
}
