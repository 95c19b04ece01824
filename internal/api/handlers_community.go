package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type postInput struct {
	Content string `json:"content" form:"content"`
}

func (handler *Handler) ListPosts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"posts": handler.community.List()})
}

func (handler *Handler) CreatePost(c *fiber.Ctx) error {
	input := postInput{}
	if err := bindJSON(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	current, _ := currentSession(c)
	user, ok := current.User()
	if !ok {
		return handler.apiError(c, fiber.StatusForbidden, "onboarding_required")
	}
	post, err := handler.community.Create(&user, current.Language(), input.Content)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

func (handler *Handler) LikePost(c *fiber.Ctx) error {
	post, err := handler.community.Like(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

func (handler *Handler) ListPeers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"peers": handler.peers.List()})
}
