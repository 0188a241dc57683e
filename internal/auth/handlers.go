package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	v0common "MessAPI/internal/v0/common"
)

// Handler handles authentication HTTP requests
type Handler struct {
	repo        *Repository
	oauthConfig *OAuthConfig
	sessions    *SessionStore
	states      *OAuthStateStore
	frontendURL string
}

// NewHandler creates a new auth handler
func NewHandler(repo *Repository, oauthConfig *OAuthConfig, sessions *SessionStore, states *OAuthStateStore, frontendURL string) *Handler {
	return &Handler{
		repo:        repo,
		oauthConfig: oauthConfig,
		sessions:    sessions,
		states:      states,
		frontendURL: frontendURL,
	}
}

// Login initiates the OAuth flow for a provider.
// GET /api/auth/login/:provider
func (h *Handler) Login(c *gin.Context) {
	provider := Provider(c.Param("provider"))

	if !h.oauthConfig.IsProviderConfigured(provider) {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"unsupported or unconfigured provider"}))
		return
	}

	state, err := h.states.CreateState()
	if err != nil {
		log.Printf("Error creating OAuth state: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to initiate login"}))
		return
	}

	authURL, err := h.oauthConfig.GetAuthURL(provider, state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to build authorization URL"}))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Callback completes the OAuth flow.
// GET /api/auth/callback/:provider
func (h *Handler) Callback(c *gin.Context) {
	provider := Provider(c.Param("provider"))
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"missing code or state parameter"}))
		return
	}

	valid, err := h.states.ValidateState(state)
	if err != nil {
		log.Printf("Error validating OAuth state: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to validate state"}))
		return
	}
	if !valid {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid or expired state"}))
		return
	}

	token, err := h.oauthConfig.ExchangeCode(c.Request.Context(), provider, code)
	if err != nil {
		log.Printf("Error exchanging OAuth code: %v", err)
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"failed to exchange authorization code"}))
		return
	}

	info, err := h.oauthConfig.GetUserInfo(c.Request.Context(), provider, token)
	if err != nil {
		log.Printf("Error fetching user info: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch user info"}))
		return
	}

	user, err := h.findOrCreateUser(provider, info)
	if err != nil {
		log.Printf("Error resolving user: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to resolve user"}))
		return
	}

	session, err := h.sessions.CreateSession(user.ID)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to create session"}))
		return
	}

	h.sessions.SetSessionCookie(c, session.ID)

	if h.frontendURL != "" {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL)
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(user))
}

// findOrCreateUser resolves the OAuth identity to a local account,
// creating a pending student account on first login.
func (h *Handler) findOrCreateUser(provider Provider, info *OAuthUserInfo) (*User, error) {
	identity, err := h.repo.GetOAuthIdentity(provider, info.ProviderID)
	if err != nil {
		return nil, err
	}
	if identity != nil {
		return h.repo.GetUserByID(identity.UserID)
	}

	// Link by email if an account already exists from another provider
	user, err := h.repo.GetUserByEmail(info.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = h.repo.CreateUser(info.Email, info.DisplayName)
		if err != nil {
			return nil, err
		}
	}

	if _, err := h.repo.CreateOAuthIdentity(user.ID, provider, info.ProviderID); err != nil {
		return nil, err
	}
	return user, nil
}

// Me returns the current authenticated user.
// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"authentication required"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(user))
}

// Logout destroys the current session.
// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	sessionID, err := h.sessions.GetSessionFromCookie(c)
	if err == nil && sessionID != "" {
		if err := h.sessions.DeleteSession(sessionID); err != nil {
			log.Printf("Error deleting session: %v", err)
		}
	}
	h.sessions.ClearSessionCookie(c)
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "logged out"}))
}

// UpdateProfile updates the current user's profile fields.
// PATCH /api/auth/me
func (h *Handler) UpdateProfile(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"authentication required"}))
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid request body"}))
		return
	}

	if req.DisplayName != nil && *req.DisplayName == "" {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"display name cannot be empty"}))
		return
	}

	if err := h.repo.UpdateProfile(user.ID, req.DisplayName, req.Year, req.Branch, req.Phone); err != nil {
		log.Printf("Error updating profile: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to update profile"}))
		return
	}

	updated, err := h.repo.GetUserByID(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch updated profile"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(updated))
}
