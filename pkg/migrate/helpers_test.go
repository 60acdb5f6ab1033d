package migrate_test

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/walteh/aethermig/pkg/config"
	"github.com/walteh/aethermig/pkg/log"
	"github.com/walteh/aethermig/pkg/migrate"
	"github.com/walteh/aethermig/pkg/status"
)

// 🧪 testEnv captures both output streams of a run
type testEnv struct {
	ctx  context.Context
	out  *bytes.Buffer
	errs *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	zlog := zerolog.New(zerolog.NewTestWriter(t))
	out, errs := &bytes.Buffer{}, &bytes.Buffer{}
	ctx := log.NewContext(zlog.WithContext(context.Background()), log.New(out, errs, zerolog.Disabled))
	return &testEnv{ctx: ctx, out: out, errs: errs}
}

func (e *testEnv) run(t *testing.T, root string, cfg *config.Config, dryRun bool, files migrate.FileManager) *status.Stats {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	m, err := migrate.New(migrate.Options{Root: root, Config: cfg, DryRun: dryRun, Files: files})
	require.NoError(t, err, "creating migrator")
	stats, err := m.Run(e.ctx)
	require.NoError(t, err, "running migration")
	return stats
}

// writeTree creates files from a map of slash paths to content. Keys ending
// in "/" create empty directories.
func writeTree(t *testing.T, root string, tree map[string]string) {
	t.Helper()
	for rel, content := range tree {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// readTree is the inverse of writeTree, listing every directory as well.
// Symlinks are recorded as "-> <target>" and never followed.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			tree[rel] = "-> " + target
			return nil
		}
		if d.IsDir() {
			tree[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[rel] = string(data)
		return nil
	})
	require.NoError(t, err, "reading tree")
	return tree
}

// 🧪 faultyFiles fails selected calls, keyed by "<op>:<base name>"
type faultyFiles struct {
	migrate.OSFileManager
	failOn map[string]error
}

func (f faultyFiles) fault(op, path string) error {
	return f.failOn[op+":"+filepath.Base(path)]
}

func (f faultyFiles) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	if err := f.fault("readdir", path); err != nil {
		return nil, err
	}
	return f.OSFileManager.ReadDir(ctx, path)
}

func (f faultyFiles) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := f.fault("read", path); err != nil {
		return nil, err
	}
	return f.OSFileManager.Open(ctx, path)
}

func (f faultyFiles) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	if err := f.fault("write", path); err != nil {
		return err
	}
	return f.OSFileManager.WriteFileAtomic(ctx, path, content)
}

func (f faultyFiles) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := f.fault("rename", oldPath); err != nil {
		return err
	}
	return f.OSFileManager.Rename(ctx, oldPath, newPath)
}
