package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/just/internal/models"
	"golang.org/x/text/unicode/norm"
)

const maxNicknameLength = 20

var (
	ErrNicknameRequired = errors.New("nickname is required")
	ErrNicknameTooLong  = errors.New("nickname too long")
)

// OnboardingTarget receives the profile created at onboarding.
type OnboardingTarget interface {
	Onboard(user *models.User) error
}

type OnboardingService struct{}

func NewOnboardingService() *OnboardingService {
	return &OnboardingService{}
}

func (service *OnboardingService) NormalizeNickname(raw string) (string, error) {
	nickname := norm.NFC.String(strings.TrimSpace(raw))
	if nickname == "" {
		return "", ErrNicknameRequired
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return "", ErrNicknameTooLong
	}
	return nickname, nil
}

// Complete validates the nickname and hands a zeroed profile to target.
func (service *OnboardingService) Complete(target OnboardingTarget, nickname string, isPublic bool) (*models.User, error) {
	normalized, err := service.NormalizeNickname(nickname)
	if err != nil {
		return nil, err
	}
	user := models.NewUser(normalized, isPublic)
	if err := target.Onboard(user); err != nil {
		return nil, err
	}
	return user, nil
}
