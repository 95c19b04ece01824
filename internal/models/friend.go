package models

type Friend struct {
	ID               string `json:"id"`
	Nickname         string `json:"nickname"`
	IsOnline         bool   `json:"is_online"`
	StudyTimeMinutes int    `json:"study_time"`
	GoalRate         int    `json:"goal_rate"`
	StatusMessage    string `json:"status_message"`
}
