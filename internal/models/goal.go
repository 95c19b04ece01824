package models

import "strings"

type GoalType string

const (
	GoalTypeStudy  GoalType = "study"
	GoalTypeHealth GoalType = "health"
	GoalTypeSocial GoalType = "social"
)

func (goalType GoalType) Valid() bool {
	switch goalType {
	case GoalTypeStudy, GoalTypeHealth, GoalTypeSocial:
		return true
	default:
		return false
	}
}

func ParseGoalType(raw string) (GoalType, bool) {
	goalType := GoalType(strings.ToLower(strings.TrimSpace(raw)))
	return goalType, goalType.Valid()
}

// Goal belongs to the day's ephemeral goal set and is never persisted.
type Goal struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Type      GoalType `json:"type"`
}
