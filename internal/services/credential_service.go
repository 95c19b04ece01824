package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	ErrCredentialEmpty    = errors.New("credential is empty")
	ErrCredentialInvalid  = errors.New("credential rejected by provider")
	ErrDeleteNotConfirmed = errors.New("credential delete not confirmed")
)

type CredentialStore interface {
	Save(secret string) error
	Load() (string, bool)
	Clear() error
	Present() bool
}

type CredentialTester interface {
	TestCredential(ctx context.Context, candidate string) bool
}

// CredentialChanged is dispatched after every successful save or clear.
type CredentialChanged struct {
	Version uint64 `json:"version"`
	Present bool   `json:"present"`
}

type CredentialStatus struct {
	Present bool   `json:"present"`
	Masked  string `json:"masked,omitempty"`
	Version uint64 `json:"key_version"`
}

type CredentialService struct {
	store  CredentialStore
	tester CredentialTester
	mask   func(string) string

	mu          sync.Mutex
	version     uint64
	nextID      int
	subscribers map[int]func(CredentialChanged)
}

func NewCredentialService(store CredentialStore, tester CredentialTester, mask func(string) string) *CredentialService {
	return &CredentialService{
		store:       store,
		tester:      tester,
		mask:        mask,
		subscribers: make(map[int]func(CredentialChanged)),
	}
}

// SaveValidated tests candidate against the provider and persists it only
// when the test succeeds. The stored credential is untouched on failure.
func (service *CredentialService) SaveValidated(ctx context.Context, candidate string) error {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ErrCredentialEmpty
	}
	if !service.tester.TestCredential(ctx, candidate) {
		return ErrCredentialInvalid
	}
	return service.Save(candidate)
}

// Save persists candidate without a provider round-trip.
func (service *CredentialService) Save(candidate string) error {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ErrCredentialEmpty
	}
	if err := service.store.Save(candidate); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	slog.Info("credential saved", "component", "credential")
	service.publish()
	return nil
}

func (service *CredentialService) Delete(confirm bool) error {
	if !confirm {
		return ErrDeleteNotConfirmed
	}
	if err := service.store.Clear(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	slog.Info("credential cleared", "component", "credential")
	service.publish()
	return nil
}

func (service *CredentialService) Test(ctx context.Context, candidate string) error {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ErrCredentialEmpty
	}
	if !service.tester.TestCredential(ctx, candidate) {
		return ErrCredentialInvalid
	}
	return nil
}

func (service *CredentialService) Status() CredentialStatus {
	status := CredentialStatus{
		Present: service.store.Present(),
		Version: service.Version(),
	}
	if !status.Present {
		return status
	}
	if secret, ok := service.store.Load(); ok && service.mask != nil {
		status.Masked = service.mask(secret)
	}
	return status
}

func (service *CredentialService) Version() uint64 {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.version
}

// Subscribe registers fn for credential changes and returns a function
// that removes it.
func (service *CredentialService) Subscribe(fn func(CredentialChanged)) func() {
	service.mu.Lock()
	defer service.mu.Unlock()

	id := service.nextID
	service.nextID++
	service.subscribers[id] = fn
	return func() {
		service.mu.Lock()
		defer service.mu.Unlock()
		delete(service.subscribers, id)
	}
}

func (service *CredentialService) publish() {
	service.mu.Lock()
	service.version++
	event := CredentialChanged{Version: service.version, Present: service.store.Present()}
	listeners := make([]func(CredentialChanged), 0, len(service.subscribers))
	for _, fn := range service.subscribers {
		listeners = append(listeners, fn)
	}
	service.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}
