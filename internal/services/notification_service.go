package services

import "github.com/terraincognita07/just/internal/reward"

// NotificationService turns state changes into user-facing messages.
type NotificationService struct {
	messages Translator
}

func NewNotificationService(messages Translator) *NotificationService {
	return &NotificationService{messages: messages}
}

// ResolveRewardNotice returns the weekly bonus notice, or "" when the
// outcome carries nothing to announce.
func (service *NotificationService) ResolveRewardNotice(lang string, outcome reward.Outcome) string {
	if !outcome.WeeklyBonusAwarded {
		return ""
	}
	return service.messages.Translate(lang, "reward.weekly_bonus")
}

func (service *NotificationService) ResolveCredentialNotice(lang string, event CredentialChanged) string {
	if event.Present {
		return service.messages.Translate(lang, "credential.saved")
	}
	return service.messages.Translate(lang, "credential.deleted")
}
