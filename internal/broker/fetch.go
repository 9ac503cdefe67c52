package broker

// FetchStatus distinguishes the four /fetch response shapes from §4.4.5.
type FetchStatus int

const (
	FetchMissingToken FetchStatus = iota
	FetchNoSuchEntry
	FetchNotReady
	FetchReady
)

// FetchResult is the outcome of polling a fetch-token key.
type FetchResult struct {
	Status FetchStatus
	AuthID string
}

// Fetch polls the fetch-token cache for a pre-registered rendezvous slot.
func (s *Service) Fetch(token string) FetchResult {
	if token == "" {
		return FetchResult{Status: FetchMissingToken}
	}

	entry, ok := s.fetchTokens.Get(token)
	if !ok {
		return FetchResult{Status: FetchNoSuchEntry}
	}
	if !entry.Completed() {
		return FetchResult{Status: FetchNotReady}
	}
	return FetchResult{Status: FetchReady, AuthID: entry.AuthID}
}
