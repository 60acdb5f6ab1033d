// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package migrate

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/pkg/config"
	"github.com/walteh/aethermig/pkg/log"
	"github.com/walteh/aethermig/pkg/status"
	"github.com/walteh/aethermig/pkg/text"
)

// Title is the banner printed at the start of every run.
const Title = "AetherCore Skill Identifier Migration"

var (
	// ErrRootNotDirectory is returned when the root exists but is not a directory.
	ErrRootNotDirectory = errors.Base("root is not a directory")
	// ErrNoConfig is returned by New when Options.Config is nil.
	ErrNoConfig = errors.Base("no configuration")
)

// 🎯 Options configures a migration run
type Options struct {
	Root   string
	Config *config.Config
	DryRun bool

	// Files defaults to OSFileManager.
	Files FileManager
}

// 🏃 Migrator runs the tree-wide identifier migration
type Migrator struct {
	root     string
	cfg      *config.Config
	dryRun   bool
	files    FileManager
	rewriter *text.Rewriter
}

// 🏭 New creates a migrator for a root directory
func New(opts Options) (*Migrator, error) {
	if opts.Config == nil {
		return nil, errors.WithStack(ErrNoConfig)
	}
	if opts.Config.TokenMap() == nil {
		if err := opts.Config.Validate(); err != nil {
			return nil, errors.Errorf("validating config: %w", err)
		}
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving root %s: %w", root, err)
	}

	files := opts.Files
	if files == nil {
		files = OSFileManager{}
	}

	return &Migrator{
		root:     abs,
		cfg:      opts.Config,
		dryRun:   opts.DryRun,
		files:    files,
		rewriter: text.NewRewriter(opts.Config.TokenMap()),
	}, nil
}

// Root is the absolute directory the migrator walks.
func (m *Migrator) Root() string {
	return m.root
}

// 🏃 Run walks the tree once. Per-entry failures are logged and counted in the
// returned stats; only an unusable root or a cancelled context is an error.
func (m *Migrator) Run(ctx context.Context) (*status.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("starting migration: %w", err)
	}

	logger := log.FromContext(ctx)
	zlog := zerolog.Ctx(ctx).With().Str("root", m.root).Bool("dry_run", m.dryRun).Logger()
	ctx = zlog.WithContext(ctx)

	if err := m.checkRoot(ctx); err != nil {
		return nil, err
	}

	logger.Banner(Title)
	logger.Mappings(m.cfg.TokenMap().Mappings())
	logger.Infof("Starting migration from: %s", m.root)
	logger.LogNewline()

	stats := status.NewStats(m.dryRun)
	w := &walker{
		root:     m.root,
		cfg:      m.cfg,
		dryRun:   m.dryRun,
		files:    m.files,
		rewriter: m.rewriter,
		stats:    stats,
		logger:   logger,
		planned:  map[string]struct{}{},
	}
	w.processDirectory(ctx, m.root)

	summary, err := status.FormatSummary(stats)
	if err != nil {
		return stats, errors.Errorf("formatting summary: %w", err)
	}
	logger.Print(summary)
	logger.Success(status.OutcomeMessage(stats))

	zlog.Debug().
		Int("files_updated", stats.FilesUpdated).
		Int("files_renamed", stats.FilesRenamed).
		Int("directories_renamed", stats.DirectoriesRenamed).
		Int("total_replacements", stats.TotalReplacements).
		Int("warnings", stats.Warnings).
		Int("errors", stats.Errors).
		Msg("migration finished")

	return stats, nil
}

func (m *Migrator) checkRoot(ctx context.Context) error {
	info, err := m.files.Stat(ctx, m.root)
	if err != nil {
		return errors.Errorf("checking root %s: %w", m.root, err)
	}
	if !info.IsDir() {
		return errors.Errorf("%s: %w", m.root, ErrRootNotDirectory)
	}
	if _, err := m.files.ReadDir(ctx, m.root); err != nil {
		return errors.Errorf("reading root %s: %w", m.root, err)
	}
	return nil
}
