package delivery

import (
	"net/http"

	authdomain "selkie-backend/internal/auth/domain"
	"selkie-backend/internal/auth/usecase"
	"selkie-backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "access_token"
	userKey    = "user"
)

// AuthMiddleware resolves the session from the access_token cookie, falling
// back to the Authorization header, and stores the user on the context.
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err != nil || raw == "" {
			raw = c.GetHeader("Authorization")
		}
		if raw == "" {
			unauthorized(c, "Not authenticated")
			return
		}

		user, err := authUsecase.ResolveCurrentUser(c.Request.Context(), raw)
		if err != nil {
			unauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(userKey, user)
		c.Set(middleware.UserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*authdomain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*authdomain.User)
	return user, ok
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}
