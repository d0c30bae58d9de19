package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/api"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
	ctxSessionID = "session_id"
)

// VerificationChecker reports whether a member has confirmed their email.
type VerificationChecker interface {
	IsVerified(ctx context.Context, userID int) (bool, error)
}

func AuthMiddleware(secret string, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			api.Fail(c, http.StatusUnauthorized, "authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			api.Fail(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			api.Fail(c, http.StatusUnauthorized, "token is empty")
			return
		}

		claims, err := ValidateToken(tokenString, secret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				api.Fail(c, http.StatusUnauthorized, "token expired")
			} else {
				api.Fail(c, http.StatusUnauthorized, "invalid or malformed token")
			}
			return
		}

		if claims.TokenType != TokenTypeAccess {
			api.Fail(c, http.StatusUnauthorized, "access token required")
			return
		}

		alive, err := sessions.Exists(c.Request.Context(), claims.SessionID())
		if err != nil {
			logger.Error("session lookup failed", "session_id", claims.SessionID(), "error", err)
			api.Fail(c, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
		if !alive {
			api.Fail(c, http.StatusUnauthorized, "session has been revoked")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)
		c.Set(ctxSessionID, claims.SessionID())

		c.Next()
	}
}

// RequireRole lets the request through when the caller holds any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			api.Fail(c, http.StatusUnauthorized, "user role not found")
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		api.Fail(c, http.StatusForbidden, "insufficient permissions")
	}
}

// RequireVerified blocks members that have not verified their account.
// Staff roles are always allowed.
func RequireVerified(checker VerificationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := GetRole(c); role == RoleAdmin || role == RoleCoach {
			c.Next()
			return
		}

		userID, ok := GetUserID(c)
		if !ok {
			api.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		verified, err := checker.IsVerified(c.Request.Context(), userID)
		if err != nil {
			api.Internal(c, err)
			return
		}
		if !verified {
			api.Fail(c, http.StatusForbidden, "account is not verified")
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int)
	return id, ok
}

func GetRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}

func GetSessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
