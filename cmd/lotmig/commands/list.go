package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lotmig/cmd/lotmig/opts"
	"gitlab.com/tozd/go/errors"
)

// NewListCmd creates a new list command
func NewListCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show lots that have not been migrated",
		Long: `List scans the source root and prints every lot that is not yet
recorded in the processed ledger. Nothing is copied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.UserLogger.Header()
			if _, err := opts.Session.Scan(cmd.Context()); err != nil {
				return errors.Errorf("scanning source root: %w", err)
			}
			return nil
		},
	}

	return cmd
}
