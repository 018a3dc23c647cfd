package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ContextClientID   = "client_id"
	ContextIsOperator = "is_operator"
)

type claims struct {
	UserID     uint `json:"uid"`
	IsOperator bool `json:"operator"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token issued by the identity service and
// resolves the calling client into the request context.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			cl := &claims{}
			token, err := jwt.ParseWithClaims(tokenString, cl, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || cl.UserID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextClientID, cl.UserID)
			c.Set(ContextIsOperator, cl.IsOperator)
			return next(c)
		}
	}
}

// OperatorOnly gates platform-staff routes. Must run after Auth.
func OperatorOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isOp, ok := c.Get(ContextIsOperator).(bool); !ok || !isOp {
				return echo.NewHTTPError(http.StatusForbidden, "operator access required")
			}
			return next(c)
		}
	}
}

// ClientID extracts the authenticated client from the context.
func ClientID(c echo.Context) uint {
	id, _ := c.Get(ContextClientID).(uint)
	return id
}
