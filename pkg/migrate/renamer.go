package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/pkg/log"
)

var errBadName = errors.Base("rewritten name is not a single path element")

// renameIfNeeded renames path when its leaf name holds a legacy identifier and
// returns the path the entry lives at afterwards. An existing entry at the
// target is never overwritten.
func (w *walker) renameIfNeeded(ctx context.Context, path string, isDir bool) string {
	dir, base := filepath.Split(path)
	if !w.rewriter.Contains(base) {
		return path
	}

	result := w.rewriter.Rewrite(base)
	newBase := string(result.ModifiedContent)
	if newBase == base {
		return path
	}

	rel := w.rel(path)
	if newBase == "." || newBase == ".." || strings.ContainsAny(newBase, `/\`) {
		w.fail(fmt.Sprintf("renaming %s", rel), errors.Errorf("%q: %w", newBase, errBadName))
		return path
	}

	newPath := filepath.Join(dir, newBase)
	newRel := w.rel(newPath)

	exists, err := w.exists(ctx, newPath)
	if err != nil {
		w.fail(fmt.Sprintf("checking %s", newRel), err)
		return path
	}
	if exists {
		w.stats.RecordWarning()
		w.logger.Warningf("Skip rename: %s already exists", newRel)
		return path
	}

	if w.dryRun {
		w.planned[newPath] = struct{}{}
	} else if err := w.files.Rename(ctx, path, newPath); err != nil {
		w.fail(fmt.Sprintf("renaming %s", rel), err)
		return path
	}

	w.stats.RecordRename(isDir, result.ReplacementCount)
	w.logger.LogFileOperation(ctx, log.FileOperation{
		Action:       log.ActionRenamed,
		Path:         rel,
		NewPath:      newBase,
		IsDir:        isDir,
		Replacements: result.ReplacementCount,
		DryRun:       w.dryRun,
	})

	if w.dryRun {
		return path
	}
	return newPath
}

// exists checks the target without following symlinks. During a dry run
// targets claimed by earlier would-be renames count as existing.
func (w *walker) exists(ctx context.Context, path string) (bool, error) {
	if _, ok := w.planned[path]; ok {
		return true, nil
	}
	_, err := w.files.Lstat(ctx, path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
