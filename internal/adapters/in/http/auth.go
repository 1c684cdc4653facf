package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trackit/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

var (
	ErrMissingBearer = errors.New("missing bearer token")
	ErrNoActor       = errors.New("request has no authenticated actor")
)

// BuildToken signs an HS256 token whose subject is the actor id.
func BuildToken(actorID kernel.UUID, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  actorID.String(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ParseActor verifies the token signature and returns its subject.
func ParseActor(tokenString string, secret []byte) (kernel.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
	if err != nil {
		return kernel.UUID{}, err
	}
	if !token.Valid {
		return kernel.UUID{}, fmt.Errorf("token invalid")
	}

	return kernel.UUIDFromString(claims.Subject)
}

// Authenticate resolves the bearer token into the request actor.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return writeAuthError(c, ErrMissingBearer)
			}

			actorID, err := ParseActor(raw, secret)
			if err != nil {
				return writeAuthError(c, err)
			}

			c.Set(actorKey, actorID)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) (kernel.UUID, error) {
	actorID, ok := c.Get(actorKey).(kernel.UUID)
	if !ok {
		return kernel.UUID{}, ErrNoActor
	}
	return actorID, nil
}

func writeAuthError(c echo.Context, err error) error {
	return c.JSON(http.StatusUnauthorized, Error{
		Code:    http.StatusUnauthorized,
		Kind:    "Unauthenticated",
		Message: "Missing or invalid credentials: " + err.Error(),
	})
}
