package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/ak/brewlab/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Roles recognised on write endpoints
const (
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT middleware configuration
type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// ErrTokenExpired is returned by ValidateToken for a well-formed but expired token
var ErrTokenExpired = errors.New("token has expired")

func abort(c *gin.Context, err *apperrors.APIError) {
	c.AbortWithStatusJSON(err.HTTPStatus, apperrors.NewErrorResponse(err))
}

// JWTMiddleware creates a JWT authentication middleware
func JWTMiddleware(config JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperrors.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abort(c, apperrors.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := ValidateToken(parts[1], config.Secret)
		switch {
		case errors.Is(err, ErrTokenExpired):
			abort(c, apperrors.New(apperrors.ErrTokenExpired, err.Error(), http.StatusUnauthorized))
			return
		case err != nil:
			abort(c, apperrors.New(apperrors.ErrTokenInvalid, err.Error(), http.StatusUnauthorized))
			return
		case claims.Issuer != config.Issuer:
			abort(c, apperrors.New(apperrors.ErrTokenInvalid, "invalid token issuer", http.StatusUnauthorized))
			return
		}

		c.Set("claims", claims)
		c.Set("user_id", claims.UserID)
		c.Set("roles", claims.Roles)

		c.Next()
	}
}

// GenerateToken creates a new JWT token. A zero TokenTTL means one hour; a
// negative one yields a token that is already expired.
func GenerateToken(config JWTConfig, userID, email string, roles []string) (string, error) {
	ttl := config.TokenTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    config.Issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Secret))
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// RequireRole creates a middleware that checks for any of the required roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abort(c, apperrors.Forbidden("no roles found in token"))
			return
		}

		for _, required := range roles {
			for _, have := range claims.Roles {
				if have == required {
					c.Next()
					return
				}
			}
		}

		abort(c, apperrors.Forbidden("insufficient permissions"))
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetClaims extracts JWT claims from context
func GetClaims(c *gin.Context) *JWTClaims {
	if claims, exists := c.Get("claims"); exists {
		if jwtClaims, ok := claims.(*JWTClaims); ok {
			return jwtClaims
		}
	}
	return nil
}
