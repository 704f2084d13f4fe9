package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeGithub(t *testing.T, withEmail bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_token", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		user := map[string]any{"id": 1234, "login": "octocat", "name": "Mona"}
		if withEmail {
			user["email"] = "mona@example.com"
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "primary@example.com", "primary": true, "verified": true},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGithubClient_ExchangeAndFetch(t *testing.T) {
	srv := newFakeGithub(t, true)
	client := NewGithubClient("id", "secret", "").WithEndpoints(srv.URL+"/login/oauth/access_token", srv.URL)

	token, err := client.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_token", token)

	user, err := client.FetchUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "1234", user.UID())
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, "mona@example.com", user.Email)
	assert.NotEmpty(t, user.Raw)
}

func TestGithubClient_BadCode(t *testing.T) {
	srv := newFakeGithub(t, true)
	client := NewGithubClient("id", "secret", "").WithEndpoints(srv.URL+"/login/oauth/access_token", srv.URL)

	_, err := client.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGithubClient_FallsBackToPrimaryEmail(t *testing.T) {
	srv := newFakeGithub(t, false)
	client := NewGithubClient("id", "secret", "").WithEndpoints(srv.URL+"/login/oauth/access_token", srv.URL)

	user, err := client.FetchUser(context.Background(), "gho_token")
	require.NoError(t, err)
	assert.Equal(t, "primary@example.com", user.Email)
}

func TestGithubClient_RejectedToken(t *testing.T) {
	srv := newFakeGithub(t, true)
	client := NewGithubClient("id", "secret", "").WithEndpoints(srv.URL+"/login/oauth/access_token", srv.URL)

	_, err := client.FetchUser(context.Background(), "nope")
	assert.Error(t, err)
}
