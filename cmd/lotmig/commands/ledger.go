package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lotmig/cmd/lotmig/opts"
	"gitlab.com/tozd/go/errors"
)

// NewLedgerCmd creates a new ledger command
func NewLedgerCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show lots recorded as processed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := opts.Ledger.Entries(cmd.Context())
			if err != nil {
				return errors.Errorf("reading ledger: %w", err)
			}
			opts.UserLogger.RenderLedger(entries)
			return nil
		},
	}

	return cmd
}
