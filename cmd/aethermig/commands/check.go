package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/cmd/aethermig/opts"
)

// ErrPendingChanges is returned by check when the tree still holds legacy
// identifiers.
var ErrPendingChanges = errors.Base("legacy identifiers found")

// NewCheckCmd creates the check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report pending changes without touching the tree",
		Long: `Check performs a dry run over the tree and exits non-zero when any file
would be rewritten or renamed. Use it in CI to keep legacy identifiers out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := RunMigration(cmd.Context(), o, true)
			if err != nil {
				return err
			}
			if stats.Changed() {
				return errors.Errorf("%d files to update, %d files and %d directories to rename: %w",
					stats.FilesUpdated, stats.FilesRenamed, stats.DirectoriesRenamed, ErrPendingChanges)
			}
			return nil
		},
	}

	return cmd
}
