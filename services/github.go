package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubAPIBaseURL = "https://api.github.com"
	githubTimeout    = 15 * time.Second
)

// GithubUser is the part of the GitHub account used to link or create a local user.
type GithubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`

	// Raw holds the whole /user document, stored as extra data of the social account.
	Raw json.RawMessage `json:"-"`
}

// UID returns the provider account id as stored on the social account.
func (u GithubUser) UID() string {
	return strconv.FormatInt(u.ID, 10)
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GithubClient exchanges OAuth codes and reads the authenticated GitHub account.
type GithubClient struct {
	oauth      *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// NewGithubClient builds a client for the OAuth app identified by clientID and clientSecret.
// Parameters:
//   - clientID, clientSecret: credentials of the GitHub OAuth app
//   - redirectURL: callback registered with the app, sent along with code exchanges
func NewGithubClient(clientID, clientSecret, redirectURL string) *GithubClient {
	return &GithubClient{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBaseURL: githubAPIBaseURL,
		httpClient: &http.Client{Timeout: githubTimeout},
	}
}

// WithEndpoints points the client at another OAuth token URL and API base URL.
// Used against GitHub Enterprise and in tests.
func (c *GithubClient) WithEndpoints(tokenURL, apiBaseURL string) *GithubClient {
	c.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:   c.oauth.Endpoint.AuthURL,
		TokenURL:  tokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
	c.apiBaseURL = apiBaseURL
	return c
}

// Exchange trades an authorization code for an access token.
func (c *GithubClient) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("github code exchange: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("github code exchange returned no access token")
	}
	return token.AccessToken, nil
}

// FetchUser reads the account behind accessToken.
// When the profile hides its email the primary verified address is looked up.
func (c *GithubClient) FetchUser(ctx context.Context, accessToken string) (*GithubUser, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := c.oauth.Client(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	body, err := c.get(ctx, client, "/user")
	if err != nil {
		return nil, err
	}
	var user GithubUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode github user: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("github user response has no id")
	}
	user.Raw = body

	if user.Email == "" {
		if email, err := c.primaryEmail(ctx, client); err != nil {
			log.Warn().Err(err).Str("login", user.Login).Msg("could not read github emails")
		} else {
			user.Email = email
		}
	}
	return &user, nil
}

func (c *GithubClient) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	body, err := c.get(ctx, client, "/user/emails")
	if err != nil {
		return "", err
	}
	var emails []githubEmail
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", fmt.Errorf("decode github emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func (c *GithubClient) get(ctx context.Context, client *http.Client, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github %s returned status %d: %s", path, resp.StatusCode, string(body))
	}
	return body, nil
}
