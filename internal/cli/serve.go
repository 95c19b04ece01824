package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/just/internal/api"
	"github.com/terraincognita07/just/internal/config"
	"github.com/terraincognita07/just/internal/reward"
	"github.com/terraincognita07/just/internal/services"
	"github.com/terraincognita07/just/internal/session"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = 5 * time.Minute
)

func NewServeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "listen port")
	return cmd
}

// buildServer wires services into a fiber app. The returned manager owns the
// live sessions.
func buildServer(cfg *config.Config, rt *runtime) (*fiber.App, *session.Manager, error) {
	sessions := session.NewManager(rt.content, session.Config{
		TTL: cfg.SessionTTL,
		InitialQuote: func(lang string) string {
			return rt.messages.Translate(lang, "quote.initial")
		},
	})
	rt.credentials.Subscribe(sessions.HandleCredentialChanged)

	handler, err := api.NewHandler(api.Dependencies{
		SecretKey:     cfg.SecretKey,
		CookieSecure:  cfg.CookieSecure,
		SessionTTL:    cfg.SessionTTL,
		I18n:          rt.messages,
		Sessions:      sessions,
		Content:       rt.content,
		Credentials:   rt.credentials,
		Onboarding:    services.NewOnboardingService(),
		Community:     services.NewCommunityService(rt.messages, nil),
		Peers:         services.NewPeerService(),
		Notifications: services.NewNotificationService(rt.messages),
		Rewards:       reward.NewMachine(time.Now, cfg.Location),
		GenerateRate:  cfg.GenAIRatePerMinute,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Just",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	api.RegisterRoutes(app, handler)

	return app, sessions, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	app, sessions, err := buildServer(cfg, rt)
	if err != nil {
		return err
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(ctx)
	defer cancelLifecycle()
	go sessions.Run(lifecycleCtx, sessionSweepInterval)

	go func() {
		<-lifecycleCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("just listening", "addr", "http://0.0.0.0"+cfg.Addr(), "config", cfg.String(), "credential_present", rt.store.Present())
	if err := app.Listen(cfg.Addr()); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
