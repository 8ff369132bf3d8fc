package transport

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

// userContextKey is where AuthMiddleware parks the authenticated user for
// downstream handlers.
const userContextKey = "authUser"

type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues a JWT for a user.
func SignToken(secret string, ttl time.Duration, user *storage.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// AuthMiddleware verifies the bearer token and loads the user it names; the
// lookup doubles as a deactivation check since deleted users fail here even
// with a live token.
func AuthMiddleware(secret string, users storage.UserStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no authentication token, authorization denied"})
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			logging.Log.Warnf("AUTH: rejected token for %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is not valid"})
			return
		}

		user, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			logging.Log.Warnf("AUTH: token names unknown user %s", claims.UserID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is not valid"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// AdminMiddleware gates a route to admins. It must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != storage.RoleAdmin {
			logging.Log.Warnf("AUTH: non-admin access attempt to %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied: admin privileges required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user AuthMiddleware resolved, or nil outside an
// authenticated route.
func CurrentUser(c *gin.Context) *storage.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*storage.User)
	return user
}
