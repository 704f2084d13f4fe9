package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")

	cfg, err := New("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 5, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 180*time.Second, cfg.ReadTimeout())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestNew_ListsAreTrimmed(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("ACCEPTED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := New("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AcceptedOrigins)
}

func TestNew_RejectsUnknownDBType(t *testing.T) {
	t.Setenv("DB_TYPE", "oracle")

	_, err := New("does-not-exist.env")
	assert.Error(t, err)
}

func TestNew_MaxPageSizeNeverBelowDefault(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DEFAULT_PAGE_SIZE", "20")
	t.Setenv("MAX_PAGE_SIZE", "10")

	cfg, err := New("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.MaxPageSize)
}

type fakeParameterReader struct {
	value string
	err   error
	asked string
}

func (f *fakeParameterReader) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.asked = aws.ToString(in.Name)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(f.value)}}, nil
}

func TestResolveSecrets(t *testing.T) {
	t.Run("plain secret", func(t *testing.T) {
		cfg := &Config{AuthSecret: "s3cret"}
		assert.NoError(t, cfg.ResolveSecrets(context.Background(), &fakeParameterReader{}))
		assert.Equal(t, "s3cret", cfg.AuthSecret)
	})

	t.Run("from parameter store", func(t *testing.T) {
		reader := &fakeParameterReader{value: "from-ssm"}
		cfg := &Config{AuthSecretSSMParam: "/kolo/auth-secret"}
		require.NoError(t, cfg.ResolveSecrets(context.Background(), reader))
		assert.Equal(t, "/kolo/auth-secret", reader.asked)
		assert.Equal(t, "from-ssm", cfg.AuthSecret)
	})

	t.Run("parameter store failure", func(t *testing.T) {
		cfg := &Config{AuthSecretSSMParam: "/kolo/auth-secret"}
		err := cfg.ResolveSecrets(context.Background(), &fakeParameterReader{err: errors.New("denied")})
		assert.Error(t, err)
	})

	t.Run("no secret at all", func(t *testing.T) {
		cfg := &Config{}
		assert.Error(t, cfg.ResolveSecrets(context.Background(), nil))
	})
}
