package commands

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/cmd/aethermig/opts"
	"github.com/walteh/aethermig/pkg/log"
	"github.com/walteh/aethermig/pkg/migrate"
	"github.com/walteh/aethermig/pkg/status"
)

// RunMigration walks opts.Root once. Per-entry failures are only reported;
// the returned error is set for an unusable root.
func RunMigration(ctx context.Context, o *opts.RootOpts, dryRun bool) (*status.Stats, error) {
	m, err := migrate.New(migrate.Options{
		Root:   o.Root,
		Config: o.Config,
		DryRun: dryRun,
	})
	if err != nil {
		return nil, errors.Errorf("creating migrator: %w", err)
	}

	stats, err := m.Run(log.NewContext(ctx, o.Logger))
	if err != nil {
		return nil, errors.Errorf("running migration: %w", err)
	}
	return stats, nil
}
