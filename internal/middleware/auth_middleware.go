package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/cagrik/pazarly/internal/utils"
	"github.com/gin-gonic/gin"
)

// extractToken reads the JWT from the session cookie or, failing that,
// from a Bearer header.
func extractToken(c *gin.Context) string {
	if token, err := c.Cookie("token"); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return ""
	}
	return tokenString
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
	c.Set("username", claims.Username)
	c.Set("claims", claims)
}

// AuthMiddleware guards API routes: missing or invalid credentials get a
// 401 JSON response.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// LoginRequired guards the browser-facing routes: missing or invalid
// credentials redirect to the login page with the original path in the
// "next" parameter, so the user lands back where they started.
func LoginRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirect := func() {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/login?next="+next)
			c.Abort()
		}

		tokenString := extractToken(c)
		if tokenString == "" {
			redirect()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			redirect()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id from the context
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
