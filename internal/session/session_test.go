package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/terraincognita07/just/internal/models"
	"github.com/terraincognita07/just/internal/reward"
	"github.com/terraincognita07/just/internal/services"
)

type stubContent struct {
	mu    sync.Mutex
	quote string
	goals []models.Goal
	calls int
	langs []string
}

func (stub *stubContent) FetchQuote(ctx context.Context, lang string) string {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.calls++
	stub.langs = append(stub.langs, lang)
	return stub.quote
}

func (stub *stubContent) FetchSuggestedGoals(ctx context.Context, lang string) []models.Goal {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	goals := make([]models.Goal, len(stub.goals))
	copy(goals, stub.goals)
	return goals
}

func (stub *stubContent) quoteCalls() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.calls
}

// 2026-10-21 is a Wednesday.
var wednesday = time.Date(2026, time.October, 21, 10, 0, 0, 0, time.UTC)

func newTestMachine() *reward.Machine {
	return reward.NewMachine(func() time.Time { return wednesday }, time.UTC)
}

func TestOnboardOnlyOnce(t *testing.T) {
	session := newSession("id", "ko", "", wednesday)

	if err := session.Onboard(models.NewUser("a", true)); err != nil {
		t.Fatalf("Onboard() unexpected error: %v", err)
	}
	if err := session.Onboard(models.NewUser("b", false)); !errors.Is(err, ErrAlreadyOnboarded) {
		t.Fatalf("second Onboard() error = %v, want ErrAlreadyOnboarded", err)
	}
	user, _ := session.User()
	if user.Nickname != "a" {
		t.Fatalf("nickname = %q, want a", user.Nickname)
	}
}

func TestToggleGoalRequiresOnboarding(t *testing.T) {
	session := newSession("id", "ko", "", wednesday)

	if _, _, err := session.ToggleGoal(newTestMachine(), "def-1"); !errors.Is(err, ErrOnboardingRequired) {
		t.Fatalf("ToggleGoal() error = %v, want ErrOnboardingRequired", err)
	}
}

func TestToggleGoalAwardsStampOnce(t *testing.T) {
	session := newSession("id", "ko", "", wednesday)
	if err := session.Onboard(models.NewUser("a", true)); err != nil {
		t.Fatalf("Onboard() unexpected error: %v", err)
	}
	session.AppendGoals([]models.Goal{
		{ID: "def-1", Text: "물", Type: models.GoalTypeHealth},
		{ID: "def-2", Text: "책상", Type: models.GoalTypeStudy},
	})
	machine := newTestMachine()

	if outcome, _, _ := session.ToggleGoal(machine, "def-1"); outcome.StampAwarded {
		t.Fatalf("stamp awarded before all goals complete")
	}
	outcome, user, err := session.ToggleGoal(machine, "def-2")
	if err != nil {
		t.Fatalf("ToggleGoal() unexpected error: %v", err)
	}
	if !outcome.StampAwarded || user.Points != reward.DailyReward || !user.Stamps[3] {
		t.Fatalf("unexpected outcome %#v user %#v", outcome, user)
	}

	session.ToggleGoal(machine, "def-2")
	outcome, user, _ = session.ToggleGoal(machine, "def-2")
	if outcome.State != reward.StateAlreadyAwarded || user.Points != reward.DailyReward {
		t.Fatalf("expected no second award, got %#v points %d", outcome, user.Points)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	session := newSession("id", "ko", "loading", wednesday)
	session.AppendGoals([]models.Goal{{ID: "g", Text: "t", Type: models.GoalTypeStudy}})

	snapshot := session.Snapshot()
	snapshot.Goals[0].Completed = true
	if session.Snapshot().Goals[0].Completed {
		t.Fatalf("snapshot mutation leaked into session")
	}
	if !snapshot.OnboardingRequired || snapshot.Quote != "loading" {
		t.Fatalf("unexpected snapshot: %#v", snapshot)
	}
}

func TestRefreshMergesWithoutDuplicates(t *testing.T) {
	content := &stubContent{
		quote: "힘내요",
		goals: []models.Goal{{ID: "def-1", Text: "물", Type: models.GoalTypeHealth}},
	}
	session := newSession("id", "en", "", wednesday)

	session.Refresh(context.Background(), content)
	session.Refresh(context.Background(), content)

	snapshot := session.Snapshot()
	if len(snapshot.Goals) != 1 || snapshot.Quote != "힘내요" || !snapshot.Loaded {
		t.Fatalf("unexpected snapshot after refresh: %#v", snapshot)
	}
	if content.langs[0] != "en" {
		t.Fatalf("refresh used language %q, want en", content.langs[0])
	}
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	now := wednesday
	manager := NewManager(&stubContent{}, Config{TTL: time.Hour, Now: func() time.Time { return now }})

	session, err := manager.Create("ko")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	now = now.Add(30 * time.Minute)
	if _, ok := manager.Get(session.ID); !ok {
		t.Fatalf("session expired too early")
	}
	now = now.Add(61 * time.Minute)
	if _, ok := manager.Get(session.ID); ok {
		t.Fatalf("expected session to expire")
	}
	if manager.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", manager.Count())
	}
}

func TestManagerExpireIdleSweep(t *testing.T) {
	now := wednesday
	manager := NewManager(&stubContent{}, Config{TTL: time.Hour, Now: func() time.Time { return now }})
	for i := 0; i < 3; i++ {
		if _, err := manager.Create("ko"); err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
	}

	now = now.Add(2 * time.Hour)
	if removed := manager.ExpireIdle(); removed != 3 {
		t.Fatalf("ExpireIdle() = %d, want 3", removed)
	}
}

func TestCredentialChangeRefreshesOnboardedSessionsOnce(t *testing.T) {
	content := &stubContent{quote: "new quote"}
	manager := NewManager(content, Config{})

	onboarded, _ := manager.Create("ko")
	if err := onboarded.Onboard(models.NewUser("a", true)); err != nil {
		t.Fatalf("Onboard() unexpected error: %v", err)
	}
	pending, _ := manager.Create("ko")

	manager.HandleCredentialChanged(services.CredentialChanged{Version: 1, Present: true})
	manager.HandleCredentialChanged(services.CredentialChanged{Version: 1, Present: true})
	manager.Wait()

	if content.quoteCalls() != 1 {
		t.Fatalf("quote fetched %d times, want 1", content.quoteCalls())
	}
	if got := onboarded.Snapshot(); got.Quote != "new quote" || got.KeyVersion != 1 {
		t.Fatalf("unexpected onboarded snapshot: %#v", got)
	}
	if got := pending.Snapshot(); got.Loaded || got.KeyVersion != 1 {
		t.Fatalf("pending session should only record the version: %#v", got)
	}

	late, _ := manager.Create("ko")
	if late.Snapshot().KeyVersion != 1 {
		t.Fatalf("new session should start at the current key version")
	}
}

func TestEnsureLoadedRunsOnce(t *testing.T) {
	content := &stubContent{quote: "q"}
	manager := NewManager(content, Config{InitialQuote: func(lang string) string { return lang + "-loading" }})

	session, _ := manager.Create("ko")
	if session.Snapshot().Quote != "ko-loading" {
		t.Fatalf("initial quote = %q", session.Snapshot().Quote)
	}
	manager.EnsureLoaded(context.Background(), session)
	manager.EnsureLoaded(context.Background(), session)
	if content.quoteCalls() != 1 {
		t.Fatalf("quote fetched %d times, want 1", content.quoteCalls())
	}
}

// batchContent returns a different suggestion batch on every call and holds
// each call until release is closed.
type batchContent struct {
	release    chan struct{}
	goalCalls  atomic.Int32
	quoteCalls atomic.Int32
}

func (content *batchContent) FetchQuote(ctx context.Context, lang string) string {
	content.quoteCalls.Add(1)
	<-content.release
	return "q"
}

func (content *batchContent) FetchSuggestedGoals(ctx context.Context, lang string) []models.Goal {
	call := content.goalCalls.Add(1)
	<-content.release
	goals := make([]models.Goal, 0, 3)
	for index := 0; index < 3; index++ {
		goals = append(goals, models.Goal{
			ID:   fmt.Sprintf("ai-%d-%d", call, index),
			Text: fmt.Sprintf("batch %d goal %d", call, index),
			Type: models.GoalTypeStudy,
		})
	}
	return goals
}

func TestEnsureLoadedSharesConcurrentFirstLoad(t *testing.T) {
	content := &batchContent{release: make(chan struct{})}
	manager := NewManager(content, Config{})
	session, err := manager.Create("ko")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.EnsureLoaded(context.Background(), session)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(content.release)
	wg.Wait()

	if calls := content.goalCalls.Load(); calls != 1 {
		t.Fatalf("suggestions fetched %d times, want 1", calls)
	}
	if calls := content.quoteCalls.Load(); calls != 1 {
		t.Fatalf("quote fetched %d times, want 1", calls)
	}
	snapshot := session.Snapshot()
	if len(snapshot.Goals) != 3 || !snapshot.Loaded {
		t.Fatalf("goals = %d loaded = %v, want 3 true", len(snapshot.Goals), snapshot.Loaded)
	}
}
