package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/terraincognita07/just/internal/models"
	"github.com/terraincognita07/just/internal/reward"
	"github.com/terraincognita07/just/internal/services"
)

var (
	ErrAlreadyOnboarded   = errors.New("session already onboarded")
	ErrOnboardingRequired = errors.New("onboarding required")
)

// ContentSource supplies the quote and goal suggestions for a refresh.
type ContentSource interface {
	FetchQuote(ctx context.Context, lang string) string
	FetchSuggestedGoals(ctx context.Context, lang string) []models.Goal
}

// Session owns one client's profile and today's goal set. All access goes
// through the mutex so toggles are applied one at a time.
type Session struct {
	ID string

	mu         sync.Mutex
	language   string
	user       *models.User
	goals      []models.Goal
	quote      string
	loaded     bool
	keyVersion uint64
	lastSeen   time.Time

	initialLoad sync.Once
}

type Snapshot struct {
	ID                 string        `json:"id"`
	Language           string        `json:"language"`
	User               *models.User  `json:"user,omitempty"`
	Goals              []models.Goal `json:"goals"`
	Quote              string        `json:"quote"`
	Loaded             bool          `json:"loaded"`
	OnboardingRequired bool          `json:"onboarding_required"`
	KeyVersion         uint64        `json:"key_version"`
}

func newSession(id string, language string, initialQuote string, now time.Time) *Session {
	return &Session{
		ID:       id,
		language: language,
		quote:    initialQuote,
		goals:    []models.Goal{},
		lastSeen: now,
	}
}

func (session *Session) Language() string {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.language
}

func (session *Session) SetLanguage(language string) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.language = language
}

func (session *Session) Onboarded() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.user != nil
}

func (session *Session) Onboard(user *models.User) error {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.user != nil {
		return ErrAlreadyOnboarded
	}
	session.user = user
	return nil
}

// User returns a copy of the profile.
func (session *Session) User() (models.User, bool) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.user == nil {
		return models.User{}, false
	}
	return *session.user, true
}

func (session *Session) ToggleGoal(machine *reward.Machine, goalID string) (reward.Outcome, models.User, error) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.user == nil {
		return reward.Outcome{}, models.User{}, ErrOnboardingRequired
	}
	outcome := machine.Toggle(session.user, session.goals, goalID)
	return outcome, *session.user, nil
}

// AppendGoals merges batch into the goal set, skipping texts already present.
func (session *Session) AppendGoals(batch []models.Goal) []models.Goal {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.goals = services.MergeGoals(session.goals, batch)
	return cloneGoals(session.goals)
}

func (session *Session) SetQuote(quote string) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.quote = quote
}

// loadOnce runs the first refresh at most once. Concurrent callers block
// until it has finished.
func (session *Session) loadOnce(ctx context.Context, content ContentSource) {
	session.initialLoad.Do(func() {
		if session.NeedsInitialLoad() {
			session.Refresh(ctx, content)
		}
	})
}

func (session *Session) NeedsInitialLoad() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return !session.loaded
}

// Refresh fetches a quote and a suggestion batch concurrently. Results are
// applied as they arrive, so a late batch is still merged without duplicates.
func (session *Session) Refresh(ctx context.Context, content ContentSource) {
	language := session.Language()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		session.SetQuote(content.FetchQuote(ctx, language))
	}()
	go func() {
		defer wg.Done()
		session.AppendGoals(content.FetchSuggestedGoals(ctx, language))
	}()
	wg.Wait()

	session.mu.Lock()
	session.loaded = true
	session.mu.Unlock()
}

func (session *Session) observeCredentialVersion(version uint64) bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	if version <= session.keyVersion {
		return false
	}
	session.keyVersion = version
	return true
}

func (session *Session) touch(now time.Time) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.lastSeen = now
}

func (session *Session) idleSince() time.Time {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.lastSeen
}

func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()

	snapshot := Snapshot{
		ID:                 session.ID,
		Language:           session.language,
		Goals:              cloneGoals(session.goals),
		Quote:              session.quote,
		Loaded:             session.loaded,
		OnboardingRequired: session.user == nil,
		KeyVersion:         session.keyVersion,
	}
	if session.user != nil {
		user := *session.user
		snapshot.User = &user
	}
	return snapshot
}

func cloneGoals(goals []models.Goal) []models.Goal {
	cloned := make([]models.Goal, len(goals))
	copy(cloned, goals)
	return cloned
}
