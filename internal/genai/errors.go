package genai

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("genai: credential is empty")
	ErrRateLimited       = errors.New("genai: local rate limit exceeded")
	ErrMalformedResponse = errors.New("genai: malformed response")
)

// StatusError reports a non-2xx answer from the generative service.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (err *StatusError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("genai: status %d", err.StatusCode)
	}
	return fmt.Sprintf("genai: status %d %s: %s", err.StatusCode, err.Status, err.Message)
}

func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
