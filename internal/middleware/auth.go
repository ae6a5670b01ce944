// Package middleware contains the request guards: bearer-token identity
// resolution, the active/superuser predicates, and the optional Redis
// response cache.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-directory/internal/auth"
	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/repository"
)

const currentUserKey = "current_user"

// CurrentUser returns a middleware that resolves the bearer token to a
// full user record and stores it in the request context. Every failure
// mode (missing header, malformed/expired/forged token, empty subject,
// unknown user) answers with the same 401 so callers cannot tell which
// check rejected them.
func CurrentUser(secret string, store repository.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return credentialsError(c)
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			username, err := auth.DecodeToken(secret, raw)
			if err != nil {
				return credentialsError(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := store.GetByUsername(ctx, username)
			if err != nil {
				return credentialsError(c)
			}

			c.Set(currentUserKey, u)
			return next(c)
		}
	}
}

// RequireActiveUser rejects deactivated accounts. It assumes CurrentUser
// already ran.
func RequireActiveUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := UserFrom(c)
		if !ok {
			return credentialsError(c)
		}
		if !u.IsActive {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Inactive user"})
		}
		return next(c)
	}
}

// RequireSuperuser rejects callers without the superuser flag. It layers
// on top of RequireActiveUser.
func RequireSuperuser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := UserFrom(c)
		if !ok {
			return credentialsError(c)
		}
		if !u.IsSuperuser {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "The user doesn't have enough privileges"})
		}
		return next(c)
	}
}

// UserFrom returns the caller identity resolved by CurrentUser.
func UserFrom(c echo.Context) (model.User, bool) {
	u, ok := c.Get(currentUserKey).(model.User)
	return u, ok
}

func credentialsError(c echo.Context) error {
	c.Response().Header().Set("WWW-Authenticate", "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Could not validate credentials"})
}
