// middleware/auth_middleware.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialape/backend/config"
	"github.com/socialape/backend/models"
	"github.com/socialape/backend/repositories"
)

const identityCacheTTL = 5 * time.Minute

// LoadIdentity resolves the token's auth identity to the application user
// record and attaches it to the request context. A token whose user record
// no longer exists fails closed with 403 rather than letting handlers run
// with an empty handle.
func LoadIdentity(repo *repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := ExtractUserID(c)
			if err != nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
			}

			if identity, ok := cachedIdentity(c.Request().Context(), userID); ok {
				c.Set("identity", identity)
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
			defer cancel()

			user, err := repo.FindByUserID(ctx, userID)
			if err != nil {
				if err == mongo.ErrNoDocuments {
					return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
				}
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
			}

			identity := models.Identity{
				UID:      user.UserID,
				Handle:   user.Handle,
				ImageURL: user.ImageURL,
			}
			cacheIdentity(c.Request().Context(), userID, identity)

			c.Set("identity", identity)
			return next(c)
		}
	}
}

// GetIdentity returns the authenticated identity attached by LoadIdentity
func GetIdentity(c echo.Context) (models.Identity, bool) {
	identity, ok := c.Get("identity").(models.Identity)
	return identity, ok
}

// InvalidateIdentity drops the cached identity for an auth id. Called after
// profile mutations so the next request observes fresh handle/image data.
func InvalidateIdentity(ctx context.Context, userID string) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return
	}
	rdb.Del(ctx, identityCacheKey(userID))
}

func identityCacheKey(userID string) string {
	return "identity:" + userID
}

func cachedIdentity(ctx context.Context, userID string) (models.Identity, bool) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return models.Identity{}, false
	}

	raw, err := rdb.Get(ctx, identityCacheKey(userID)).Result()
	if err != nil {
		return models.Identity{}, false
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return models.Identity{}, false
	}
	return identity, true
}

func cacheIdentity(ctx context.Context, userID string, identity models.Identity) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return
	}
	rdb.Set(ctx, identityCacheKey(userID), raw, identityCacheTTL)
}
