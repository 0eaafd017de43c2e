package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lotmig/cmd/lotmig/opts"
	"gitlab.com/tozd/go/errors"
)

// NewSelectCmd creates a new select command
func NewSelectCmd(opts *opts.RootOpts) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Pick lots interactively and migrate them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts.Begin(ctx)
			opts.UserLogger.Header()

			candidates, err := opts.Session.Scan(ctx)
			if err != nil {
				return errors.Errorf("scanning source root: %w", err)
			}
			if len(candidates) == 0 {
				return nil
			}

			chosen, err := opts.UserLogger.ChooseLots(candidates)
			if err != nil {
				return err
			}
			if err := selectLots(opts, chosen); err != nil {
				return err
			}

			return confirmAndRun(ctx, opts, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
