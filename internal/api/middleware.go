package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/just/internal/session"
)

const (
	sessionCookieName = "just_session"
	contextSessionKey = "current_session"
)

func currentSession(c *fiber.Ctx) (*session.Session, bool) {
	current, ok := c.Locals(contextSessionKey).(*session.Session)
	return current, ok
}

func currentLanguage(c *fiber.Ctx) string {
	if current, ok := currentSession(c); ok {
		return current.Language()
	}
	return ""
}

// SessionMiddleware attaches the caller's session, starting a new one when
// the cookie is missing, invalid or points at an expired session.
func (handler *Handler) SessionMiddleware(c *fiber.Ctx) error {
	if id, err := handler.parseSessionCookie(c); err == nil {
		if current, ok := handler.sessions.Get(id); ok {
			c.Locals(contextSessionKey, current)
			return c.Next()
		}
	}

	language := handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	current, err := handler.sessions.Create(language)
	if err != nil {
		slog.Error("session create failed", "component", "api", "error", err)
		return handler.apiError(c, fiber.StatusInternalServerError, "internal")
	}
	if err := handler.setSessionCookie(c, current.ID); err != nil {
		slog.Error("session cookie signing failed", "component", "api", "error", err)
		return handler.apiError(c, fiber.StatusInternalServerError, "internal")
	}
	c.Locals(contextSessionKey, current)
	return c.Next()
}

func (handler *Handler) OnboardingRequired(c *fiber.Ctx) error {
	current, ok := currentSession(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !current.Onboarded() {
		return handler.apiError(c, fiber.StatusForbidden, "onboarding_required")
	}
	return c.Next()
}
