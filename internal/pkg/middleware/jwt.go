package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/ridertrack/internal/pkg/jwt"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/internal/utils"
)

const principalKey = "principal"

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the rider principal on the echo context. onReject, when set, runs once per
// rejected request.
func JWTAuthMiddleware(config models.JWTConfig, onReject func()) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reject := func(msg string) error {
				if onReject != nil {
					onReject()
				}
				return utils.UnauthorizedResponse(c, msg)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject("Authorization header is required")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				return reject("Invalid authorization format")
			}

			claims, err := jwtpkg.ValidateToken(parts[1], config.Secret)
			if err != nil {
				return reject("Invalid token")
			}

			principal, err := jwtpkg.PrincipalFromClaims(*claims)
			if err != nil {
				return reject(err.Error())
			}

			c.Set("user_id", principal.UserID)
			c.Set("user_role", principal.Role)
			c.Set(principalKey, principal)

			return next(c)
		}
	}
}

// PrincipalFromContext returns the principal set by JWTAuthMiddleware
func PrincipalFromContext(c echo.Context) (models.Principal, bool) {
	p, ok := c.Get(principalKey).(models.Principal)
	return p, ok
}
