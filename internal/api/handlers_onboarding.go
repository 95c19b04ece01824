package api

import (
	"github.com/gofiber/fiber/v2"
)

type onboardingInput struct {
	Nickname string `json:"nickname" form:"nickname"`
	IsPublic bool   `json:"is_public" form:"is_public"`
}

func (handler *Handler) CompleteOnboarding(c *fiber.Ctx) error {
	input := onboardingInput{}
	if err := bindJSON(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	current, _ := currentSession(c)
	user, err := handler.onboarding.Complete(current, input.Nickname, input.IsPublic)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	current, _ := currentSession(c)
	user, ok := current.User()
	if !ok {
		return handler.apiError(c, fiber.StatusForbidden, "onboarding_required")
	}
	return c.JSON(fiber.Map{"user": user})
}
