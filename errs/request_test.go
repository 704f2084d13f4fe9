package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInvalidFieldError(t *testing.T) {
	err := NewInvalidFieldError("password", "this password is entirely numeric")

	assert.Equal(t, "invalid field: password: this password is entirely numeric", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, map[string]string{"password": "this password is entirely numeric"}, err.Fields)
	assert.True(t, IsValidationError(err))
}
