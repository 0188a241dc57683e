package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// OAuthUserInfo is the identity a provider hands back after sign-in.
// Email is the member key for rosters and fees, so it is always
// verified and lowercased before it leaves this file.
type OAuthUserInfo struct {
	ProviderID  string
	Email       string
	DisplayName string
}

// ProviderConfig holds the credentials for an OAuth provider
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
}

type userInfoFetcher func(client *http.Client) (*OAuthUserInfo, error)

type providerEntry struct {
	config *oauth2.Config
	fetch  userInfoFetcher
}

// OAuthConfig holds the configured sign-in providers
type OAuthConfig struct {
	providers map[Provider]*providerEntry
}

// NewOAuthConfig registers the sign-in providers that have credentials.
// Google is the primary provider for the hostel PWA; GitHub is kept as
// a fallback for members without a usable Google account.
func NewOAuthConfig(googleCfg, githubCfg ProviderConfig, callbackBaseURL string) *OAuthConfig {
	c := &OAuthConfig{providers: make(map[Provider]*providerEntry)}

	if googleCfg.ClientID != "" && googleCfg.ClientSecret != "" {
		c.providers[ProviderGoogle] = &providerEntry{
			config: &oauth2.Config{
				ClientID:     googleCfg.ClientID,
				ClientSecret: googleCfg.ClientSecret,
				RedirectURL:  callbackBaseURL + "/api/auth/callback/google",
				Scopes: []string{
					"https://www.googleapis.com/auth/userinfo.email",
					"https://www.googleapis.com/auth/userinfo.profile",
				},
				Endpoint: google.Endpoint,
			},
			fetch: fetchGoogleUser,
		}
	}

	if githubCfg.ClientID != "" && githubCfg.ClientSecret != "" {
		c.providers[ProviderGitHub] = &providerEntry{
			config: &oauth2.Config{
				ClientID:     githubCfg.ClientID,
				ClientSecret: githubCfg.ClientSecret,
				RedirectURL:  callbackBaseURL + "/api/auth/callback/github",
				Scopes:       []string{"user:email", "read:user"},
				Endpoint:     github.Endpoint,
			},
			fetch: fetchGitHubUser,
		}
	}

	return c
}

// IsProviderConfigured checks if a provider is configured
func (c *OAuthConfig) IsProviderConfigured(provider Provider) bool {
	_, ok := c.providers[provider]
	return ok
}

// GetAuthURL returns the OAuth authorization URL for a provider
func (c *OAuthConfig) GetAuthURL(provider Provider, state string) (string, error) {
	entry, ok := c.providers[provider]
	if !ok {
		return "", fmt.Errorf("provider %s not configured", provider)
	}
	return entry.config.AuthCodeURL(state), nil
}

// ExchangeCode exchanges an authorization code for tokens
func (c *OAuthConfig) ExchangeCode(ctx context.Context, provider Provider, code string) (*oauth2.Token, error) {
	entry, ok := c.providers[provider]
	if !ok {
		return nil, fmt.Errorf("provider %s not configured", provider)
	}
	return entry.config.Exchange(ctx, code)
}

// GetUserInfo fetches the signed-in member's identity from the provider
func (c *OAuthConfig) GetUserInfo(ctx context.Context, provider Provider, token *oauth2.Token) (*OAuthUserInfo, error) {
	entry, ok := c.providers[provider]
	if !ok {
		return nil, fmt.Errorf("provider %s not configured", provider)
	}

	info, err := entry.fetch(entry.config.Client(ctx, token))
	if err != nil {
		return nil, err
	}

	info.Email = strings.ToLower(strings.TrimSpace(info.Email))
	if info.Email == "" {
		return nil, fmt.Errorf("%s returned no verified email", provider)
	}
	if info.DisplayName == "" {
		info.DisplayName = info.Email
	}
	return info, nil
}

func providerGet(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func fetchGoogleUser(client *http.Client) (*OAuthUserInfo, error) {
	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := providerGet(client, "https://www.googleapis.com/oauth2/v2/userinfo", &payload); err != nil {
		return nil, err
	}

	// Unverified addresses cannot key a mess account.
	if !payload.VerifiedEmail {
		return nil, fmt.Errorf("google account email is not verified")
	}

	return &OAuthUserInfo{
		ProviderID:  payload.ID,
		Email:       payload.Email,
		DisplayName: payload.Name,
	}, nil
}

func fetchGitHubUser(client *http.Client) (*OAuthUserInfo, error) {
	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
	}
	if err := providerGet(client, "https://api.github.com/user", &payload); err != nil {
		return nil, err
	}

	// The profile email field may be private or unverified; the emails
	// endpoint is the only trustworthy source.
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := providerGet(client, "https://api.github.com/user/emails", &emails); err != nil {
		return nil, err
	}

	email := ""
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			email = e.Email
			break
		}
		if email == "" {
			email = e.Email
		}
	}

	name := payload.Name
	if name == "" {
		name = payload.Login
	}

	return &OAuthUserInfo{
		ProviderID:  strconv.FormatInt(payload.ID, 10),
		Email:       email,
		DisplayName: name,
	}, nil
}
