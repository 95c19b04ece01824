package cli

import (
	"fmt"

	"github.com/terraincognita07/just/internal/config"
	"github.com/terraincognita07/just/internal/credential"
	"github.com/terraincognita07/just/internal/db"
	"github.com/terraincognita07/just/internal/genai"
	"github.com/terraincognita07/just/internal/i18n"
	"github.com/terraincognita07/just/internal/services"
	"gorm.io/gorm"
)

// runtime is the wiring shared by the server and the credential commands.
type runtime struct {
	database    *gorm.DB
	messages    *i18n.Manager
	store       *credential.Store
	content     *services.ContentService
	credentials *services.CredentialService
}

func openRuntime(cfg *config.Config) (*runtime, error) {
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	messages, err := i18n.NewManager(cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}

	repositories := db.NewRepositories(database)
	store := credential.NewStore(repositories.KeyValues)
	factory := genai.NewFactory(genai.Config{
		BaseURL:       cfg.GeminiBaseURL,
		Model:         cfg.GeminiModel,
		Timeout:       cfg.GenAITimeout,
		RatePerMinute: cfg.GenAIRatePerMinute,
	})
	content := services.NewContentService(store, func(secret string) services.ContentGenerator {
		return factory.New(secret)
	}, messages)

	return &runtime{
		database:    database,
		messages:    messages,
		store:       store,
		content:     content,
		credentials: services.NewCredentialService(store, content, credential.Masked),
	}, nil
}

func (rt *runtime) Close() error {
	sqlDB, err := rt.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
