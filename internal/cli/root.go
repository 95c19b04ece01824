package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraincognita07/just/internal/config"
)

// NewRootCommand builds the just CLI. Without a subcommand it serves HTTP.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "just",
		Args:          cobra.NoArgs,
		Short:         "Just - daily goals, stamps and a little encouragement",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite database")

	cmd.AddCommand(NewServeCommand(cfg))
	cmd.AddCommand(NewCredentialCommand(cfg))
	return cmd
}
