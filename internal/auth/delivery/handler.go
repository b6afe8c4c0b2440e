package delivery

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	authdomain "selkie-backend/internal/auth/domain"
	authdto "selkie-backend/internal/auth/dto"
	"selkie-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const oauthFailedRedirect = "/login?error=oauth_failed"

type CookieConfig struct {
	Secure      bool
	MaxAge      time.Duration
	FrontendURL string
}

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	cookie      CookieConfig
	logger      *slog.Logger
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(authUsecase usecase.AuthUsecase, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	if cookie.FrontendURL == "" {
		cookie.FrontendURL = "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{authUsecase: authUsecase, cookie: cookie, logger: logger}
}

// Register creates a password account.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req authdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, authdomain.ErrEmailAlreadyRegistered) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
			return
		}
		if errors.Is(err, authdomain.ErrPasswordTooLong) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Password must be at most 72 bytes"})
			return
		}
		h.internalError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Token exchanges form credentials for a session token and sets the session cookie.
// POST /api/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req authdto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	raw, err := h.authUsecase.PasswordLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			unauthorized(c, "Incorrect email or password")
			return
		}
		h.internalError(c, "password login", err)
		return
	}

	h.setSessionCookie(c, raw)
	c.JSON(http.StatusOK, authdto.TokenResponse{AccessToken: raw, TokenType: "bearer"})
}

// GoogleLogin redirects to the Google consent page.
// GET /api/auth/google/login
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	url, err := h.authUsecase.GoogleLoginURL(c.Request.Context())
	if err != nil {
		h.internalError(c, "google login", err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback finishes the OAuth flow and redirects to the frontend.
// GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.Warn("google callback returned error", slog.String("error", providerErr))
		c.Redirect(http.StatusTemporaryRedirect, oauthFailedRedirect)
		return
	}

	raw, err := h.authUsecase.GoogleCallback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		h.logger.Warn("google callback failed", slog.String("error", err.Error()))
		c.Redirect(http.StatusTemporaryRedirect, oauthFailedRedirect)
		return
	}

	h.setSessionCookie(c, raw)
	c.Redirect(http.StatusTemporaryRedirect, h.cookie.FrontendURL)
}

// Logout asks the client to drop its session cookie. Tokens stay valid until they expire.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, authdto.MessageResponse{Message: "Successfully logged out"})
}

// Me returns the authenticated user.
// GET /api/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		unauthorized(c, "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, raw string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "Bearer "+raw, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error(op+" failed", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}
