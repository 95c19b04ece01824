package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/just/internal/services"
)

type credentialInput struct {
	Key string `json:"key" form:"key"`
}

func (handler *Handler) GetCredential(c *fiber.Ctx) error {
	return c.JSON(handler.credentials.Status())
}

func (handler *Handler) SaveCredential(c *fiber.Ctx) error {
	input := credentialInput{}
	if err := bindJSON(c, &input); err != nil {
		return handler.respondError(c, err)
	}
	if handler.credentialAttemptsExhausted(c) {
		return handler.apiError(c, fiber.StatusTooManyRequests, "rate_limited")
	}

	if err := handler.credentials.SaveValidated(c.UserContext(), input.Key); err != nil {
		handler.recordCredentialFailure(c, err)
		return handler.respondError(c, err)
	}
	handler.credentialFailures.reset(credentialAttemptKey(c))

	status := handler.credentials.Status()
	return c.JSON(fiber.Map{
		"credential": status,
		"message":    handler.credentialNotice(c, status),
	})
}

func (handler *Handler) TestCredential(c *fiber.Ctx) error {
	input := credentialInput{}
	if err := bindJSON(c, &input); err != nil {
		return handler.respondError(c, err)
	}
	if handler.credentialAttemptsExhausted(c) {
		return handler.apiError(c, fiber.StatusTooManyRequests, "rate_limited")
	}

	if err := handler.credentials.Test(c.UserContext(), input.Key); err != nil {
		handler.recordCredentialFailure(c, err)
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteCredential(c *fiber.Ctx) error {
	if err := handler.credentials.Delete(c.QueryBool("confirm", false)); err != nil {
		if errors.Is(err, services.ErrDeleteNotConfirmed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "delete_not_confirmed",
				"message": handler.i18n.Translate(currentLanguage(c), "credential.delete_confirm"),
			})
		}
		return handler.respondError(c, err)
	}
	status := handler.credentials.Status()
	return c.JSON(fiber.Map{
		"credential": status,
		"message":    handler.credentialNotice(c, status),
	})
}

func (handler *Handler) credentialNotice(c *fiber.Ctx, status services.CredentialStatus) string {
	return handler.notifications.ResolveCredentialNotice(currentLanguage(c), services.CredentialChanged{
		Version: status.Version,
		Present: status.Present,
	})
}

func (handler *Handler) credentialAttemptsExhausted(c *fiber.Ctx) bool {
	return handler.credentialFailures.tooManyRecent(credentialAttemptKey(c), handler.now(), credentialFailLimit, credentialFailWindow)
}

func (handler *Handler) recordCredentialFailure(c *fiber.Ctx, err error) {
	if errors.Is(err, services.ErrCredentialInvalid) {
		handler.credentialFailures.addFailure(credentialAttemptKey(c), handler.now(), credentialFailWindow)
	}
}
