package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/walteh/lotmig/cmd/lotmig/opts"
	"github.com/walteh/lotmig/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates a new run command
func NewRunCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		all bool
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "run [LOT...]",
		Short: "Migrate the named lots, or every unprocessed lot with --all",
		Long: `Run migrates lots into the destination root.
It will:
1. Scan the source root for unprocessed lots
2. Select the named lots (or all of them with --all)
3. Ask for confirmation unless --yes is given
4. Copy and rename each lot's images, then record it in the ledger`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if all == (len(args) > 0) {
				return errors.New("name the lots to migrate or pass --all, not both")
			}

			opts.Begin(ctx)
			opts.UserLogger.Header()

			if _, err := opts.Session.Scan(ctx); err != nil {
				return errors.Errorf("scanning source root: %w", err)
			}

			if all {
				opts.Session.SelectAllUnprocessed()
			} else if err := selectLots(opts, args); err != nil {
				return err
			}

			return confirmAndRun(ctx, opts, yes)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "select every unprocessed lot")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

// selectLots selects each named lot once, in the order given
func selectLots(opts *opts.RootOpts, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := opts.Session.ToggleSelection(id); err != nil {
			return errors.Errorf("selecting lots: %w", err)
		}
	}
	return nil
}

// confirmAndRun asks for the go-ahead and runs the selection
func confirmAndRun(ctx context.Context, opts *opts.RootOpts, assumeYes bool) error {
	n := len(opts.Session.Selection())
	confirmed := true
	if n > 0 {
		ok, err := opts.UserLogger.Confirm(n, assumeYes)
		if err != nil {
			return err
		}
		confirmed = ok
	}

	report, err := opts.Session.RunBatch(ctx, confirmed)
	if errors.Is(err, operation.ErrNotConfirmed) {
		opts.Audit.Cancelled(ctx, n)
		return nil
	}
	if report != nil {
		opts.Audit.Summary(report)
	}
	return err
}
