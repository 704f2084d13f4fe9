package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// External Service Errors
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrOAuthExchange      = errors.New("oauth exchange failed")
	ErrStorageUpload      = errors.New("storage upload failed")
)

// Configuration Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

func NewServiceUnavailableError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("%s is unavailable", service),
		Cause:      cause,
	}
}

// NewOAuthExchangeError is returned when a provider rejects a code or an access token.
func NewOAuthExchangeError(provider string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrOAuthExchange,
		Details:    fmt.Sprintf("%s rejected the supplied credentials", provider),
		Field:      "code",
		Cause:      cause,
	}
}

func NewStorageUploadError(backend string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageUpload,
		Details:    fmt.Sprintf("failed to store file in %s", backend),
		Cause:      cause,
	}
}

func NewConfigMissingError(key string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("configuration key %s is not set", key),
		Field:      key,
	}
}

func IsServiceUnavailableError(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

func IsOAuthExchangeError(err error) bool {
	return errors.Is(err, ErrOAuthExchange)
}
