package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	api := app.Group("/api", handler.SessionMiddleware)
	api.Get("/app", handler.AppInfo)
	api.Put("/language", handler.SetLanguage)
	api.Post("/onboarding", handler.CompleteOnboarding)

	generate := handler.generateLimiter()

	onboarded := api.Group("", handler.OnboardingRequired)
	onboarded.Get("/credential", handler.GetCredential)
	onboarded.Put("/credential", handler.SaveCredential)
	onboarded.Delete("/credential", handler.DeleteCredential)
	onboarded.Post("/credential/test", generate, handler.TestCredential)
	onboarded.Get("/me", handler.Me)
	onboarded.Get("/dashboard", handler.Dashboard)
	onboarded.Post("/dashboard/refresh", generate, handler.RefreshDashboard)
	onboarded.Post("/goals/recommend", generate, handler.RecommendGoals)
	onboarded.Post("/goals/:id/toggle", handler.ToggleGoal)
	onboarded.Get("/posts", handler.ListPosts)
	onboarded.Post("/posts", handler.CreatePost)
	onboarded.Post("/posts/:id/like", handler.LikePost)
	onboarded.Get("/peers", handler.ListPeers)
}

// generateLimiter bounds requests that can reach the generative service.
func (handler *Handler) generateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        handler.generateRate,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if current, ok := currentSession(c); ok {
				return current.ID
			}
			return requestLimiterKey(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return handler.apiError(c, fiber.StatusTooManyRequests, "rate_limited")
		},
	})
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
