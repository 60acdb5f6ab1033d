package opts

import (
	"io"

	"github.com/walteh/aethermig/pkg/bridge"
	"github.com/walteh/aethermig/pkg/config"
	"github.com/walteh/aethermig/pkg/log"
)

// RootOpts contains shared options used by all commands. It is filled in by
// the root command before any sub-command runs.
type RootOpts struct {
	Root   string
	Config *config.Config
	DryRun bool

	Logger *log.Logger
	Stdout io.Writer
	Stderr io.Writer

	// Generators builds the Gemini client for the ask command.
	Generators bridge.GeneratorFactory
}
