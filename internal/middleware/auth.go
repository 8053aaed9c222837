package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the token. Viewers are read-only.
const (
	RoleAdmin  = "admin"
	RoleAgent  = "agent"
	RoleViewer = "viewer"
)

const (
	ctxUserID = "userID"
	ctxRole   = "userRole"
)

var (
	errMissingToken = errors.New("authorization token is required")
	errBadScheme    = errors.New("authorization header must be Bearer <token>")
	errExpiredToken = errors.New("token has expired")
	errInvalidToken = errors.New("invalid token")
	errUnknownRole  = errors.New("token carries no known role")
)

// Claims is the token payload issued by the agency's identity provider.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Auth verifies an HS256 token from the Authorization header, or from the token
// query parameter for download links opened in a browser.
func Auth(jwtSecret string) gin.HandlerFunc {
	key := []byte(jwtSecret)
	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err != nil {
			unauthorized(c, err)
			return
		}
		claims, err := parseClaims(raw, key)
		if err != nil {
			unauthorized(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errBadScheme
	}
	return strings.TrimSpace(token), nil
}

func parseClaims(raw string, key []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errExpiredToken
	case err != nil:
		return nil, errInvalidToken
	}

	switch claims.Role {
	case RoleAdmin, RoleAgent, RoleViewer:
		return claims, nil
	}
	return nil, errUnknownRole
}

func unauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
}

// GetUserID returns the authenticated user's id, or 0 outside Auth.
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetUserRole returns the authenticated user's role, or "" outside Auth.
func GetUserRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "role " + role + " cannot perform this action",
		})
	}
}

// RequireWriter allows admins and agents, the roles that may change the books.
func RequireWriter() gin.HandlerFunc {
	return RequireRole(RoleAdmin, RoleAgent)
}
