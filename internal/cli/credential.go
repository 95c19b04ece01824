package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/just/internal/config"
	"github.com/terraincognita07/just/internal/services"
)

func NewCredentialCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the stored AI service key",
	}
	cmd.AddCommand(newCredentialStatusCommand(cfg))
	cmd.AddCommand(newCredentialSetCommand(cfg))
	cmd.AddCommand(newCredentialClearCommand(cfg))
	cmd.AddCommand(newCredentialTestCommand(cfg))
	return cmd
}

func newCredentialStatusCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a key is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cfg, func(rt *runtime) error {
				status := rt.credentials.Status()
				if !status.Present {
					fmt.Fprintln(cmd.OutOrStdout(), "no key stored")
					return nil
				}
				if status.Masked == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "key stored but unreadable")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "key stored: %s\n", status.Masked)
				return nil
			})
		},
	}
}

func newCredentialSetCommand(cfg *config.Config) *cobra.Command {
	var skipTest bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Validate and store a key (read from the terminal without echo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := promptSecret(cmd.InOrStdin(), cmd.OutOrStdout(), "API key: ")
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			return withRuntime(cfg, func(rt *runtime) error {
				if err := saveCredential(cmd.Context(), rt.credentials, secret, skipTest); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rt.messages.Translate(cfg.DefaultLanguage, "credential.saved"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&skipTest, "skip-test", false, "store without a test call to the provider")
	return cmd
}

func newCredentialClearCommand(cfg *config.Config) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cfg, func(rt *runtime) error {
				confirm := yes
				if !confirm {
					fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", rt.messages.Translate(cfg.DefaultLanguage, "credential.delete_confirm"))
					answer, err := readLine(cmd.InOrStdin())
					if err != nil {
						return err
					}
					confirm = isAffirmative(answer)
				}
				if err := rt.credentials.Delete(confirm); err != nil {
					if errors.Is(err, services.ErrDeleteNotConfirmed) {
						fmt.Fprintln(cmd.OutOrStdout(), "aborted")
						return nil
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rt.messages.Translate(cfg.DefaultLanguage, "credential.deleted"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCredentialTestCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check the stored key against the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cfg, func(rt *runtime) error {
				secret, ok := rt.store.Load()
				if !ok {
					return errors.New("no readable key stored")
				}
				if err := rt.credentials.Test(cmd.Context(), secret); err != nil {
					return errors.New(rt.messages.Translate(cfg.DefaultLanguage, "error.credential_invalid"))
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
}

func saveCredential(ctx context.Context, credentials *services.CredentialService, secret string, skipTest bool) error {
	if skipTest {
		return credentials.Save(secret)
	}
	return credentials.SaveValidated(ctx, secret)
}

func withRuntime(cfg *config.Config, fn func(rt *runtime) error) error {
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
