package provider

import "errors"

var (
	ErrNotFound      = errors.New("no catalog entry for identifier")
	ErrQuotaExceeded = errors.New("metadata quota exceeded")
	ErrAuth          = errors.New("metadata authentication failed")
)

// Error codes carried by ProviderError.
const (
	CodeAuthFailed     = "AUTH_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnavailable    = "UNAVAILABLE"
	CodeProbeFailed    = "PROBE_FAILED"
	CodeUnknown        = "UNKNOWN"
)

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Is maps error codes onto the package sentinels.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == CodeNotFound
	case ErrQuotaExceeded:
		return e.Code == CodeRateLimited
	case ErrAuth:
		return e.Code == CodeAuthFailed
	}
	return false
}
