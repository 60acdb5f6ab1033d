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

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/cmd/aethermig/commands"
	"github.com/walteh/aethermig/cmd/aethermig/opts"
	"github.com/walteh/aethermig/pkg/bridge"
	"github.com/walteh/aethermig/pkg/config"
	"github.com/walteh/aethermig/pkg/log"
)

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	root       string
	configFile string
	dryRun     bool
	debug      bool
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr, nil)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "✗ %s\n", color.New(color.FgRed).Sprint(err.Error()))
		return 1
	}
	return 0
}

// newRootCmd builds the command tree. A nil generator factory talks to the
// Gemini API.
func newRootCmd(stdout, stderr io.Writer, generators bridge.GeneratorFactory) *cobra.Command {
	var flags rootFlags
	o := &opts.RootOpts{
		Stdout:     stdout,
		Stderr:     stderr,
		Generators: generators,
	}

	cmd := &cobra.Command{
		Use:   "aethermig",
		Short: "Migrate legacy skill identifiers to their AetherCore names",
		Long: `aethermig walks a repository, rewrites legacy skill identifiers inside text
files and renames files and directories whose names carry them. Existing
paths are never overwritten and running it twice is a no-op.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), flags.debug, stderr)
			cmd.SetContext(ctx)
			return newRootOpts(ctx, o, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := commands.RunMigration(cmd.Context(), o, o.DryRun)
			return err
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	addRootFlags(cmd, &flags)

	cmd.AddCommand(
		commands.NewCheckCmd(o),
		commands.NewAskCmd(o),
		commands.NewOptimizeCmd(o),
		newVersionCmd(stdout),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.root, "root", "r", ".", "directory to migrate")
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: discovered in the root)")
	cmd.PersistentFlags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "show what would change without writing")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
}

// newRootOpts fills the shared options from the parsed flags
func newRootOpts(ctx context.Context, o *opts.RootOpts, flags rootFlags) error {
	cfg, err := config.Resolve(ctx, flags.configFile, flags.root)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	level := zerolog.Disabled
	if flags.debug {
		level = zerolog.DebugLevel
	}

	o.Root = flags.root
	o.Config = cfg
	o.DryRun = flags.dryRun
	o.Logger = log.New(o.Stdout, o.Stderr, level)
	return nil
}

// setupLogging attaches a zerolog logger to ctx. Without --debug it is a
// no-op logger so the console stream stays clean.
func setupLogging(ctx context.Context, debug bool, stderr io.Writer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if !debug {
		return zerolog.Nop().WithContext(ctx)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
