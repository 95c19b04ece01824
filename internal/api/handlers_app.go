package api

import (
	"github.com/gofiber/fiber/v2"
)

type languageInput struct {
	Language string `json:"language" form:"language"`
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) AppInfo(c *fiber.Ctx) error {
	current, _ := currentSession(c)
	status := handler.credentials.Status()
	return c.JSON(fiber.Map{
		"splash_ms":           splashDuration.Milliseconds(),
		"language":            current.Language(),
		"languages":           handler.i18n.SupportedLanguages(),
		"onboarding_required": !current.Onboarded(),
		"credential_present":  status.Present,
		"key_version":         status.Version,
	})
}

func (handler *Handler) SetLanguage(c *fiber.Ctx) error {
	input := languageInput{}
	if err := bindJSON(c, &input); err != nil {
		return handler.respondError(c, err)
	}
	current, _ := currentSession(c)
	current.SetLanguage(handler.i18n.NormalizeLanguage(input.Language))
	return c.JSON(fiber.Map{"language": current.Language()})
}
