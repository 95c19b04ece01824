package credential

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// StorageKey is the single durable slot holding the obfuscated credential.
const StorageKey = "just_app_api_key_enc"

var ErrEmptySecret = errors.New("credential secret is empty")

type KeyValueRepository interface {
	Get(key string) (string, bool, error)
	Exists(key string) (bool, error)
	Put(key string, value string) error
	Delete(key string) error
}

// Store persists one obfuscated credential. Present answers from memory and
// never decodes the stored value, so a corrupt slot is present but loads as
// absent.
type Store struct {
	repo    KeyValueRepository
	mu      sync.RWMutex
	present bool
}

func NewStore(repo KeyValueRepository) *Store {
	store := &Store{repo: repo}
	exists, err := repo.Exists(StorageKey)
	if err != nil {
		slog.Warn("credential presence check failed", "component", "credential", "error", err)
	}
	store.present = exists
	return store
}

func (store *Store) Save(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrEmptySecret
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.repo.Put(StorageKey, Obfuscate(secret)); err != nil {
		return err
	}
	store.present = true
	return nil
}

// Load never fails: a missing, unreadable or corrupt slot is reported as absent.
func (store *Store) Load() (string, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	stored, found, err := store.repo.Get(StorageKey)
	if err != nil {
		slog.Warn("credential read failed", "component", "credential", "error", err)
		return "", false
	}
	if !found {
		return "", false
	}

	secret, err := Deobfuscate(stored)
	if err != nil {
		slog.Warn("credential slot unreadable, treating as absent", "component", "credential")
		return "", false
	}
	return secret, true
}

func (store *Store) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.repo.Delete(StorageKey); err != nil {
		return err
	}
	store.present = false
	return nil
}

func (store *Store) Present() bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.present
}

// Masked renders a secret for display, keeping only its edges.
func Masked(secret string) string {
	runes := []rune(secret)
	if len(runes) <= 8 {
		return strings.Repeat("•", len(runes))
	}
	return string(runes[:4]) + strings.Repeat("•", 4) + string(runes[len(runes)-4:])
}
