package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/just/internal/i18n"
	"github.com/terraincognita07/just/internal/reward"
	"github.com/terraincognita07/just/internal/services"
	"github.com/terraincognita07/just/internal/session"
)

const (
	splashDuration       = 2500 * time.Millisecond
	defaultSessionTTL    = 24 * time.Hour
	credentialFailLimit  = 5
	credentialFailWindow = 15 * time.Minute
)

type Dependencies struct {
	SecretKey     string
	CookieSecure  bool
	SessionTTL    time.Duration
	I18n          *i18n.Manager
	Sessions      *session.Manager
	Content       *services.ContentService
	Credentials   *services.CredentialService
	Onboarding    *services.OnboardingService
	Community     *services.CommunityService
	Peers         *services.PeerService
	Notifications *services.NotificationService
	Rewards       *reward.Machine
	// GenerateRate caps generation-triggering requests per client per minute.
	GenerateRate int
}

type Handler struct {
	secretKey     []byte
	cookieSecure  bool
	sessionTTL    time.Duration
	generateRate  int
	i18n          *i18n.Manager
	sessions      *session.Manager
	content       *services.ContentService
	credentials   *services.CredentialService
	onboarding    *services.OnboardingService
	community     *services.CommunityService
	peers         *services.PeerService
	notifications *services.NotificationService
	rewards       *reward.Machine

	credentialFailures *attemptLimiter
	now                func() time.Time
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if len(deps.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}
	if deps.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if deps.Sessions == nil || deps.Content == nil || deps.Credentials == nil || deps.Rewards == nil {
		return nil, errors.New("session manager, content, credential and reward services are required")
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = defaultSessionTTL
	}
	if deps.GenerateRate <= 0 {
		deps.GenerateRate = 10
	}
	if deps.Onboarding == nil {
		deps.Onboarding = services.NewOnboardingService()
	}
	if deps.Community == nil {
		deps.Community = services.NewCommunityService(deps.I18n, nil)
	}
	if deps.Peers == nil {
		deps.Peers = services.NewPeerService()
	}
	if deps.Notifications == nil {
		deps.Notifications = services.NewNotificationService(deps.I18n)
	}

	return &Handler{
		secretKey:          []byte(deps.SecretKey),
		cookieSecure:       deps.CookieSecure,
		sessionTTL:         deps.SessionTTL,
		generateRate:       deps.GenerateRate,
		i18n:               deps.I18n,
		sessions:           deps.Sessions,
		content:            deps.Content,
		credentials:        deps.Credentials,
		onboarding:         deps.Onboarding,
		community:          deps.Community,
		peers:              deps.Peers,
		notifications:      deps.Notifications,
		rewards:            deps.Rewards,
		credentialFailures: newAttemptLimiter(),
		now:                time.Now,
	}, nil
}
