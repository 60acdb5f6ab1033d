package migrate

import (
	"context"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/pkg/config"
	"github.com/walteh/aethermig/pkg/log"
	"github.com/walteh/aethermig/pkg/status"
	"github.com/walteh/aethermig/pkg/text"
)

var errNotUTF8 = errors.Base("not valid UTF-8 text")

// walker holds the state of one traversal. It is single-threaded.
type walker struct {
	root     string
	cfg      *config.Config
	dryRun   bool
	files    FileManager
	rewriter *text.Rewriter
	stats    *status.Stats
	logger   *log.Logger

	// planned holds rename targets claimed during a dry run, so that two
	// entries mapping to the same name report the collision a real run hits.
	planned map[string]struct{}
}

func (w *walker) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (w *walker) fail(msg string, err error) {
	w.stats.RecordError()
	w.logger.Error(msg, err)
}

// processDirectory rewrites everything below dir, then renames dir's direct
// children. Children are renamed only after their own subtree is done, so
// paths used during recursion stay valid.
func (w *walker) processDirectory(ctx context.Context, dir string) {
	zerolog.Ctx(ctx).Debug().Str("path", w.rel(dir)).Msg("processing directory")

	entries, err := w.files.ReadDir(ctx, dir)
	if err != nil {
		w.fail(fmt.Sprintf("reading directory %s", w.rel(dir)), err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if w.cfg.IsExcludedDir(entry.Name()) {
				w.logger.LogFileOperation(ctx, log.FileOperation{
					Action: log.ActionSkipped,
					Path:   w.rel(path),
					IsDir:  true,
				})
				continue
			}
			w.processDirectory(ctx, path)
		case entry.Type().IsRegular():
			w.processFile(ctx, path)
		}
	}

	// re-list so renames see the directory as pass 1 left it
	entries, err = w.files.ReadDir(ctx, dir)
	if err != nil {
		w.fail(fmt.Sprintf("reading directory %s", w.rel(dir)), err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() && w.cfg.IsExcludedDir(entry.Name()) {
			continue
		}
		w.renameIfNeeded(ctx, filepath.Join(dir, entry.Name()), entry.IsDir())
	}
}

// isProtected reports whether a file must never be content-rewritten.
func (w *walker) isProtected(path, rel string) bool {
	if w.cfg.IsProtected(rel) {
		return true
	}
	if loc := w.cfg.Location(); loc != "" && filepath.Clean(loc) == filepath.Clean(path) {
		return true
	}
	return false
}

// processFile rewrites the content of one regular file. The file is written
// back only when at least one replacement was made.
func (w *walker) processFile(ctx context.Context, path string) {
	rel := w.rel(path)
	zlog := zerolog.Ctx(ctx).With().Str("path", rel).Logger()

	if !w.cfg.IsTextFile(path) {
		return
	}
	if w.isProtected(path, rel) {
		zlog.Debug().Msg("protected file, content left untouched")
		return
	}

	f, err := w.files.Open(ctx, path)
	if err != nil {
		w.fail(fmt.Sprintf("reading file %s", rel), err)
		return
	}
	result, err := w.rewriter.RewriteReader(ctx, f)
	if cerr := f.Close(); cerr != nil {
		zlog.Debug().Err(cerr).Msg("closing file")
	}
	if err != nil {
		w.fail(fmt.Sprintf("reading file %s", rel), err)
		return
	}
	if !utf8.Valid(result.OriginalContent) {
		w.fail(fmt.Sprintf("reading file %s", rel), errNotUTF8)
		return
	}

	if result.ReplacementCount == 0 {
		return
	}

	if w.dryRun {
		diff, err := unifiedDiff(rel, string(result.OriginalContent), string(result.ModifiedContent))
		if err != nil {
			zlog.Debug().Err(err).Msg("diff unavailable")
		} else {
			w.logger.Print(diff)
		}
	} else if err := w.files.WriteFileAtomic(ctx, path, result.ModifiedContent); err != nil {
		w.fail(fmt.Sprintf("writing file %s", rel), err)
		return
	}

	w.stats.RecordUpdate(result.ReplacementCount)
	w.logger.LogFileOperation(ctx, log.FileOperation{
		Action:       log.ActionUpdated,
		Path:         rel,
		Replacements: result.ReplacementCount,
		DryRun:       w.dryRun,
	})
}
