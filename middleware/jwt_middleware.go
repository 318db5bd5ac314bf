// middleware/jwt_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/socialape/backend/config"
)

func jwtSecretFromEnv() string {
	return os.Getenv("JWT_SECRET")
}

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// Valid implements the Claims interface for Echo's JWT middleware
func (c JwtCustomClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}
	if c.NotBefore > 0 && time.Now().Unix() < c.NotBefore {
		return errors.New("token used before valid")
	}
	return nil
}

// Token blacklist for logged-out tokens. Stored in redis with a TTL so the
// invalidation survives restarts and is shared across instances; the
// in-memory map is the fallback when no redis client is connected.
var (
	tokenBlacklist   = make(map[string]time.Time)
	tokenBlacklistMu sync.RWMutex
)

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// CleanupBlacklist periodically removes expired tokens from the fallback map.
// Redis entries expire on their own.
func CleanupBlacklist() {
	for {
		time.Sleep(1 * time.Hour)
		now := time.Now()
		tokenBlacklistMu.Lock()
		for token, expiry := range tokenBlacklist {
			if now.After(expiry) {
				delete(tokenBlacklist, token)
			}
		}
		tokenBlacklistMu.Unlock()
	}
}

// BlacklistToken invalidates a token until its expiry
func BlacklistToken(token string, expiry time.Time) {
	if rdb := config.GetRedisClient(); rdb != nil {
		ttl := time.Until(expiry)
		if ttl <= 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Set(ctx, blacklistKey(token), "1", ttl).Err(); err == nil {
			return
		}
	}

	tokenBlacklistMu.Lock()
	tokenBlacklist[token] = expiry
	tokenBlacklistMu.Unlock()
}

// IsTokenBlacklisted checks if a token is blacklisted
func IsTokenBlacklisted(token string) bool {
	if rdb := config.GetRedisClient(); rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rdb.Exists(ctx, blacklistKey(token)).Result(); err == nil && n > 0 {
			return true
		}
	}

	tokenBlacklistMu.RLock()
	defer tokenBlacklistMu.RUnlock()
	_, exists := tokenBlacklist[token]
	return exists
}

// JWTMiddleware returns a configured JWT middleware. Failures are reported
// as 403 Unauthorized, mirroring the behavior of the token verifier this
// API fronts.
func JWTMiddleware() echo.MiddlewareFunc {
	secret := jwtSecretFromEnv()
	if secret == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusForbidden, "JWT configuration error")
			}
		}
	}

	return echoMiddleware.JWTWithConfig(echoMiddleware.JWTConfig{
		SigningKey: []byte(secret),
		Claims:     &JwtCustomClaims{},
		SuccessHandler: func(c echo.Context) {
			token := c.Get("user").(*jwt.Token)

			if IsTokenBlacklisted(token.Raw) {
				c.Error(echo.NewHTTPError(http.StatusForbidden, "Token has been invalidated"))
				return
			}

			claims := token.Claims.(*JwtCustomClaims)
			c.Set("userId", claims.UserID)
			c.Set("email", claims.Email)
		},
		ErrorHandler: func(err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unauthorized")
		},
	})
}

// GenerateJWT generates a new signed token for the given auth identity
func GenerateJWT(userID, email string) (string, error) {
	secret := jwtSecretFromEnv()
	if secret == "" {
		return "", errors.New("JWT_SECRET environment variable is required")
	}

	claims := &JwtCustomClaims{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(72 * time.Hour).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a raw token string and returns its claims. Used by
// the websocket stream endpoint, which cannot carry an Authorization header.
func ParseToken(tokenString string) (*JwtCustomClaims, error) {
	secret := jwtSecretFromEnv()
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if IsTokenBlacklisted(tokenString) {
		return nil, errors.New("token has been invalidated")
	}
	return claims, nil
}

// ExtractBearerToken pulls the raw token out of the Authorization header.
func ExtractBearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("no bearer token found")
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}

// ExtractUserID returns the auth identity id set by JWTMiddleware
func ExtractUserID(c echo.Context) (string, error) {
	if userID, ok := c.Get("userId").(string); ok && userID != "" {
		return userID, nil
	}
	return "", errors.New("invalid token")
}
