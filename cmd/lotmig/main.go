package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/lotmig/cmd/lotmig/commands"
	"github.com/walteh/lotmig/cmd/lotmig/opts"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	rootOpts := &opts.RootOpts{}
	rootCmd := newRootCmd(rootOpts)

	err := rootCmd.ExecuteContext(ctx)
	rootOpts.Close(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd(rootOpts *opts.RootOpts) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lotmig",
		Short: "Migrate QC die images into the flat, renamed layout",
		Long: `lotmig copies the good-die JPEGs of each lot from the raw QC tree into a flat
destination directory, renaming every file after its lot and die group.
Lots listed in the processed ledger are never migrated again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			return newRootOpts(cmd.Context(), rootOpts)
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewListCmd(rootOpts),
		commands.NewRunCmd(rootOpts),
		commands.NewSelectCmd(rootOpts),
		commands.NewLedgerCmd(rootOpts),
	)

	return rootCmd
}
