package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/just/internal/models"
	"github.com/terraincognita07/just/internal/reward"
	"github.com/terraincognita07/just/internal/session"
)

type dashboardView struct {
	Quote             string        `json:"quote"`
	Goals             []models.Goal `json:"goals"`
	CompletedCount    int           `json:"completed_count"`
	ProgressPercent   int           `json:"progress_percent"`
	Today             int           `json:"today"`
	User              *models.User  `json:"user"`
	WeeklyBonusEarned bool          `json:"weekly_bonus_earned"`
	KeyVersion        uint64        `json:"key_version"`
}

func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	current, _ := currentSession(c)
	handler.sessions.EnsureLoaded(c.UserContext(), current)
	return c.JSON(handler.buildDashboard(current.Snapshot()))
}

func (handler *Handler) RefreshDashboard(c *fiber.Ctx) error {
	current, _ := currentSession(c)
	current.Refresh(c.UserContext(), handler.content)
	return c.JSON(handler.buildDashboard(current.Snapshot()))
}

func (handler *Handler) RecommendGoals(c *fiber.Ctx) error {
	current, _ := currentSession(c)
	batch := handler.content.FetchSuggestedGoals(c.UserContext(), current.Language())
	goals := current.AppendGoals(batch)
	return c.JSON(fiber.Map{
		"goals":            goals,
		"progress_percent": reward.ProgressPercent(goals),
	})
}

func (handler *Handler) ToggleGoal(c *fiber.Ctx) error {
	current, _ := currentSession(c)
	goalID := strings.TrimSpace(c.Params("id"))

	outcome, user, err := current.ToggleGoal(handler.rewards, goalID)
	if err != nil {
		return handler.respondError(c, err)
	}

	response := fiber.Map{
		"outcome": outcome,
		"user":    user,
	}
	if notice := handler.notifications.ResolveRewardNotice(current.Language(), outcome); notice != "" {
		response["notification"] = notice
	}
	snapshot := current.Snapshot()
	response["goals"] = snapshot.Goals
	response["progress_percent"] = reward.ProgressPercent(snapshot.Goals)
	return c.JSON(response)
}

func (handler *Handler) buildDashboard(snapshot session.Snapshot) dashboardView {
	view := dashboardView{
		Quote:           snapshot.Quote,
		Goals:           snapshot.Goals,
		CompletedCount:  reward.CompletedCount(snapshot.Goals),
		ProgressPercent: reward.ProgressPercent(snapshot.Goals),
		Today:           handler.rewards.Weekday(),
		User:            snapshot.User,
		KeyVersion:      snapshot.KeyVersion,
	}
	if snapshot.User != nil {
		view.WeeklyBonusEarned = snapshot.User.AllStamped()
	}
	return view
}
