package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/just/internal/security"
)

var (
	errMissingSessionCookie = errors.New("missing session cookie")
	errInvalidSessionToken  = errors.New("invalid session token")
)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (handler *Handler) buildSessionToken(sessionID string, ttl time.Duration) (string, error) {
	now := handler.now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) parseSessionCookie(c *fiber.Ctx) (string, error) {
	raw := strings.TrimSpace(c.Cookies(sessionCookieName))
	if raw == "" {
		return "", errMissingSessionCookie
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.now))
	if err != nil || !token.Valid {
		return "", errInvalidSessionToken
	}
	if claims.ExpiresAt == nil || !security.ValidSessionID(claims.SessionID) {
		return "", errInvalidSessionToken
	}
	return claims.SessionID, nil
}

func (handler *Handler) setSessionCookie(c *fiber.Ctx, sessionID string) error {
	token, err := handler.buildSessionToken(sessionID, handler.sessionTTL)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(handler.sessionTTL),
	})
	return nil
}
