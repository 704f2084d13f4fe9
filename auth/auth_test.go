package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
	})
}

func TestIssuePair_RoundTrip(t *testing.T) {
	s := newTestService()

	pair, err := s.IssuePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims, err := s.Parse(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)

	_, err = s.Parse(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = s.Parse(pair.Access, RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestRefresh(t *testing.T) {
	s := newTestService()
	pair, err := s.IssuePair(7)
	require.NoError(t, err)

	access, err := s.Refresh(pair.Refresh)
	require.NoError(t, err)
	claims, err := s.Parse(access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	_, err = s.Refresh(pair.Access)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	s := newTestService()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := s.IssuePair(1)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(pair.Access, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	pair, err := newTestService().IssuePair(1)
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenTTL: time.Hour})
	_, err = other.Parse(pair.Access, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "", want: ""},
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer abc", want: "abc"},
		{header: "Token abc", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if tt.wantErr {
			assert.Error(t, err, tt.header)
			continue
		}
		assert.NoError(t, err, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "correct horse"))

	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword("1234567890"), ErrPasswordNumeric)
	assert.NoError(t, ValidatePassword("s3cure-enough"))
}
