// Package auth gates admin routes. Token issuance lives with the external
// identity provider; this middleware only checks the role claim on an
// already-issued access token.
package auth

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func RequireAdmin(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie("accessToken")
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing auth cookie")
			}

			token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			role, ok := claims["role"].(string)
			if !ok || role != "admin" {
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}

			if sub, ok := claims["sub"].(float64); ok {
				c.Set("userID", uint(sub))
			}
			c.Set("role", role)
			return next(c)
		}
	}
}
