package api

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/just/internal/services"
	"github.com/terraincognita07/just/internal/session"
)

var errInvalidInput = errors.New("invalid input")

// apiError writes {"error": code, "message": localized}. The message is the
// error.<code> catalog entry in the caller's language, omitted when missing.
func (handler *Handler) apiError(c *fiber.Ctx, status int, code string) error {
	body := fiber.Map{"error": code}
	key := "error." + code
	if message := handler.i18n.Translate(currentLanguage(c), key); message != key {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

// respondError maps domain errors onto HTTP statuses.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errInvalidInput):
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
	case errors.Is(err, services.ErrCredentialEmpty):
		return handler.apiError(c, fiber.StatusBadRequest, "credential_empty")
	case errors.Is(err, services.ErrCredentialInvalid):
		return handler.apiError(c, fiber.StatusUnprocessableEntity, "credential_invalid")
	case errors.Is(err, services.ErrDeleteNotConfirmed):
		return handler.apiError(c, fiber.StatusBadRequest, "delete_not_confirmed")
	case errors.Is(err, services.ErrNicknameRequired):
		return handler.apiError(c, fiber.StatusBadRequest, "nickname_required")
	case errors.Is(err, services.ErrNicknameTooLong):
		return handler.apiError(c, fiber.StatusBadRequest, "nickname_too_long")
	case errors.Is(err, services.ErrPostContentRequired):
		return handler.apiError(c, fiber.StatusBadRequest, "post_content_required")
	case errors.Is(err, services.ErrPostTooLong):
		return handler.apiError(c, fiber.StatusBadRequest, "post_too_long")
	case errors.Is(err, services.ErrPostNotFound):
		return handler.apiError(c, fiber.StatusNotFound, "post_not_found")
	case errors.Is(err, session.ErrAlreadyOnboarded):
		return handler.apiError(c, fiber.StatusConflict, "already_onboarded")
	case errors.Is(err, session.ErrOnboardingRequired):
		return handler.apiError(c, fiber.StatusForbidden, "onboarding_required")
	default:
		slog.Error("request failed", "component", "api", "path", c.Path(), "error", err)
		return handler.apiError(c, fiber.StatusInternalServerError, "internal")
	}
}

func bindJSON(c *fiber.Ctx, target any) error {
	if err := c.BodyParser(target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidInput, err)
	}
	return nil
}
