package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRegistry(t *testing.T) {
	cfg := NewOAuthConfig(
		ProviderConfig{ClientID: "gid", ClientSecret: "gsecret"},
		ProviderConfig{},
		"https://mess.example.com",
	)

	assert.True(t, cfg.IsProviderConfigured(ProviderGoogle))
	assert.False(t, cfg.IsProviderConfigured(ProviderGitHub))

	url, err := cfg.GetAuthURL(ProviderGoogle, "state123")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state123")
	assert.Contains(t, url, "client_id=gid")

	_, err = cfg.GetAuthURL(ProviderGitHub, "state123")
	assert.Error(t, err)
}

func TestProviderCallbackURLs(t *testing.T) {
	cfg := NewOAuthConfig(
		ProviderConfig{ClientID: "gid", ClientSecret: "gsecret"},
		ProviderConfig{ClientID: "hid", ClientSecret: "hsecret"},
		"https://mess.example.com",
	)

	googleURL, err := cfg.GetAuthURL(ProviderGoogle, "s")
	require.NoError(t, err)
	assert.True(t, strings.Contains(googleURL, "callback%2Fgoogle"))

	githubURL, err := cfg.GetAuthURL(ProviderGitHub, "s")
	require.NoError(t, err)
	assert.True(t, strings.Contains(githubURL, "callback%2Fgithub"))
}
