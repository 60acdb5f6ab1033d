package migrate_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/pkg/config"
	"github.com/walteh/aethermig/pkg/migrate"
	"github.com/walteh/aethermig/pkg/status"
	"github.com/walteh/aethermig/pkg/tokenmap"
)

func TestRun_EndToEndExample(t *testing.T) {
	env := newTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"knowledge-orchestrator-config.json": `{"skill": "knowledge-orchestrator"}`,
	})

	stats := env.run(t, root, nil, false, nil)

	want := &status.Stats{FilesUpdated: 1, FilesRenamed: 1, TotalReplacements: 2}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[string]string{
		"AetherCore.Orchestrator-config.json": `{"skill": "AetherCore.Orchestrator"}`,
	}, readTree(t, root))

	out := env.out.String()
	assert.Contains(t, out, "AetherCore Skill Identifier Migration")
	assert.Contains(t, out, "  knowledge-orchestrator → AetherCore.Orchestrator")
	assert.Contains(t, out, "Starting migration from: "+root)
	assert.Contains(t, out, "✓ Updated knowledge-orchestrator-config.json (1 replacements)")
	assert.Contains(t, out, "✓ Renamed file: knowledge-orchestrator-config.json → AetherCore.Orchestrator-config.json")
	assert.Contains(t, out, "Migration Complete")
	assert.Contains(t, out, "✓ Migration completed successfully.")
	assert.Empty(t, env.errs.String())
}

func TestRun(t *testing.T) {
	overlapping := &config.Config{Mappings: []tokenmap.Mapping{
		{Legacy: "prompt", Canonical: "P"},
		{Legacy: "prompt-factory", Canonical: "F"},
	}}

	tests := []struct {
		name      string
		cfg       *config.Config
		tree      map[string]string
		wantTree  map[string]string
		wantStats *status.Stats
		wantOut   []string
	}{
		{
			name:      "nothing_to_do",
			tree:      map[string]string{"README.md": "hello\n"},
			wantTree:  map[string]string{"README.md": "hello\n"},
			wantStats: &status.Stats{},
			wantOut:   []string{"✓ No legacy identifiers found. Repository is up to date."},
		},
		{
			name:      "longest_match_wins",
			cfg:       overlapping,
			tree:      map[string]string{"a.md": "prompt-factory and prompt"},
			wantTree:  map[string]string{"a.md": "F and P"},
			wantStats: &status.Stats{FilesUpdated: 1, TotalReplacements: 2},
			wantOut:   []string{"✓ Updated a.md (2 replacements)"},
		},
		{
			name:     "non_text_file_renamed_but_not_opened",
			tree:     map[string]string{"logo-prompt-factory.png": "prompt-factory"},
			wantTree: map[string]string{"logo-AetherCore.PromptFoundry.png": "prompt-factory"},
			wantStats: &status.Stats{
				FilesRenamed:      1,
				TotalReplacements: 1,
			},
		},
		{
			name:      "extension_match_ignores_case",
			tree:      map[string]string{"NOTES.MD": "prompt-factory"},
			wantTree:  map[string]string{"NOTES.MD": "AetherCore.PromptFoundry"},
			wantStats: &status.Stats{FilesUpdated: 1, TotalReplacements: 1},
		},
		{
			name: "excluded_directories_untouched",
			tree: map[string]string{
				"node_modules/prompt-factory/index.js": "prompt-factory",
				".git/HEAD.txt":                        "dealfinder-extension",
				"a.md":                                 "dealfinder-extension",
			},
			wantTree: map[string]string{
				"node_modules/":                        "",
				"node_modules/prompt-factory/":         "",
				"node_modules/prompt-factory/index.js": "prompt-factory",
				".git/":                                "",
				".git/HEAD.txt":                        "dealfinder-extension",
				"a.md":                                 "AetherCore.MarketSweep",
			},
			wantStats: &status.Stats{FilesUpdated: 1, TotalReplacements: 1},
			wantOut: []string{
				"⊘ Skipping directory: node_modules",
				"⊘ Skipping directory: .git",
			},
		},
		{
			name: "rename_collision_skipped",
			tree: map[string]string{
				"prompt-factory.txt":           "a",
				"AetherCore.PromptFoundry.txt": "b",
			},
			wantTree: map[string]string{
				"prompt-factory.txt":           "a",
				"AetherCore.PromptFoundry.txt": "b",
			},
			wantStats: &status.Stats{Warnings: 1},
			wantOut:   []string{"⚠ Skip rename: AetherCore.PromptFoundry.txt already exists"},
		},
		{
			name: "two_names_one_target",
			tree: map[string]string{
				"automation-graph.md":    "a",
				"skill-messaging-bus.md": "b",
			},
			wantTree: map[string]string{
				"AetherCore.EventMesh.md": "a",
				"skill-messaging-bus.md":  "b",
			},
			wantStats: &status.Stats{FilesRenamed: 1, TotalReplacements: 1, Warnings: 1},
			wantOut:   []string{"⚠ Skip rename: AetherCore.EventMesh.md already exists"},
		},
		{
			name: "migration_tooling_not_rewritten",
			tree: map[string]string{
				".github/scripts/rename-skills.js":               "'prompt-factory': 'AetherCore.PromptFoundry'",
				".github/workflows/update-skill-identifiers.yml": "run: node rename-skills.js # prompt-factory",
			},
			wantTree: map[string]string{
				".github/":                                       "",
				".github/scripts/":                               "",
				".github/workflows/":                             "",
				".github/scripts/rename-skills.js":               "'prompt-factory': 'AetherCore.PromptFoundry'",
				".github/workflows/update-skill-identifiers.yml": "run: node rename-skills.js # prompt-factory",
			},
			wantStats: &status.Stats{},
		},
		{
			name: "nested_directories_renamed_after_contents",
			tree: map[string]string{
				"automation-graph/deep-research-extension/notes.md": "see automation-graph\n",
			},
			wantTree: map[string]string{
				"AetherCore.EventMesh/":                              "",
				"AetherCore.EventMesh/AetherCore.DeepForge/":         "",
				"AetherCore.EventMesh/AetherCore.DeepForge/notes.md": "see AetherCore.EventMesh\n",
			},
			wantStats: &status.Stats{FilesUpdated: 1, DirectoriesRenamed: 2, TotalReplacements: 3},
			wantOut: []string{
				"✓ Renamed directory: automation-graph/deep-research-extension → AetherCore.DeepForge",
				"✓ Renamed directory: automation-graph → AetherCore.EventMesh",
			},
		},
		{
			name:      "substring_inside_longer_word",
			tree:      map[string]string{"myprompt-factoryx.md": "xprompt-factoryy"},
			wantTree:  map[string]string{"myAetherCore.PromptFoundryx.md": "xAetherCore.PromptFoundryy"},
			wantStats: &status.Stats{FilesUpdated: 1, FilesRenamed: 1, TotalReplacements: 2},
		},
		{
			name:      "multiple_tokens_in_one_name",
			tree:      map[string]string{"prompt-factory-to-automation-graph.bin": ""},
			wantTree:  map[string]string{"AetherCore.PromptFoundry-to-AetherCore.EventMesh.bin": ""},
			wantStats: &status.Stats{FilesRenamed: 1, TotalReplacements: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			root := t.TempDir()
			writeTree(t, root, tt.tree)

			stats := env.run(t, root, tt.cfg, false, nil)

			if diff := cmp.Diff(tt.wantStats, stats); diff != "" {
				t.Errorf("stats mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantTree, readTree(t, root))
			for _, want := range tt.wantOut {
				assert.Contains(t, env.out.String(), want)
			}
			assert.Empty(t, env.errs.String())
		})
	}
}

func TestRun_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":                                       "Skills: knowledge-orchestrator, prompt-factory, skill-messaging-bus\n",
		"skills/deep-research-extension/SKILL.md":         "name: deep-research-extension\n",
		"skills/deep-research-extension/run.sh":           "exec optimization-profile\n",
		"skills/dealfinder-extension/config.yaml":         "id: dealfinder-extension\n",
		"skills/dealfinder-extension/icon.svg":            "dealfinder-extension",
		"docs/automation-graph/knowledge-orchestrator.md": "# knowledge-orchestrator\n",
		"node_modules/prompt-factory/package.json":        `{"name": "prompt-factory"}`,
	})

	first := newTestEnv(t).run(t, root, nil, false, nil)
	require.True(t, first.Changed(), "first run should change the tree")
	after := readTree(t, root)

	second := newTestEnv(t).run(t, root, nil, false, nil)
	if diff := cmp.Diff(&status.Stats{}, second); diff != "" {
		t.Errorf("second run should be a no-op (-want +got):\n%s", diff)
	}
	assert.Equal(t, status.OutcomeNothingToDo, second.Outcome())
	assert.Equal(t, after, readTree(t, root))

	for rel, content := range after {
		if strings.HasPrefix(rel, "node_modules/") {
			continue
		}
		assert.False(t, tokenmap.Default().ContainsLegacy(rel), "legacy token left in name %s", rel)
		if filepath.Ext(rel) != ".svg" {
			assert.False(t, tokenmap.Default().ContainsLegacy(content), "legacy token left in %s", rel)
		}
	}
}

func TestRun_DryRun(t *testing.T) {
	e := newTestEnv(t)
	root := t.TempDir()
	tree := map[string]string{
		"knowledge-orchestrator-config.json": "{\n  \"skill\": \"knowledge-orchestrator\"\n}\n",
		"automation-graph.md":                "a",
		"skill-messaging-bus.md":             "b",
	}
	writeTree(t, root, tree)

	stats := e.run(t, root, nil, true, nil)

	want := &status.Stats{
		FilesUpdated:      1,
		FilesRenamed:      2,
		TotalReplacements: 3,
		Warnings:          1,
		DryRun:            true,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, tree, readTree(t, root), "dry run must not touch the tree")

	out := e.out.String()
	assert.Contains(t, out, "--- a/knowledge-orchestrator-config.json")
	assert.Contains(t, out, "+++ b/knowledge-orchestrator-config.json")
	assert.Contains(t, out, "-  \"skill\": \"knowledge-orchestrator\"")
	assert.Contains(t, out, "+  \"skill\": \"AetherCore.Orchestrator\"")
	assert.Contains(t, out, "~ Would update knowledge-orchestrator-config.json (1 replacements)")
	assert.Contains(t, out, "~ Would rename file: automation-graph.md → AetherCore.EventMesh.md")
	assert.Contains(t, out, "⚠ Skip rename: AetherCore.EventMesh.md already exists")
	assert.Contains(t, out, "Dry Run Complete")
	assert.Contains(t, out, "✓ Dry run found pending changes. Run without --dry-run to apply them.")
}

func TestRun_RecoverableFailures(t *testing.T) {
	tests := []struct {
		name      string
		tree      map[string]string
		failOn    map[string]error
		wantTree  map[string]string
		wantStats *status.Stats
		wantErr   string
	}{
		{
			name:   "unreadable_file_skipped",
			tree:   map[string]string{"a.md": "prompt-factory", "b.md": "prompt-factory"},
			failOn: map[string]error{"read:a.md": fs.ErrPermission},
			wantTree: map[string]string{
				"a.md": "prompt-factory",
				"b.md": "AetherCore.PromptFoundry",
			},
			wantStats: &status.Stats{FilesUpdated: 1, TotalReplacements: 1, Errors: 1},
			wantErr:   "✗ reading file a.md: permission denied",
		},
		{
			name:      "failed_write_not_counted",
			tree:      map[string]string{"a.md": "prompt-factory"},
			failOn:    map[string]error{"write:a.md": fs.ErrPermission},
			wantTree:  map[string]string{"a.md": "prompt-factory"},
			wantStats: &status.Stats{Errors: 1},
			wantErr:   "✗ writing file a.md: permission denied",
		},
		{
			name:      "failed_rename_keeps_old_path",
			tree:      map[string]string{"prompt-factory.png": "x"},
			failOn:    map[string]error{"rename:prompt-factory.png": fs.ErrPermission},
			wantTree:  map[string]string{"prompt-factory.png": "x"},
			wantStats: &status.Stats{Errors: 1},
			wantErr:   "✗ renaming prompt-factory.png: permission denied",
		},
		{
			name: "unreadable_directory_skips_subtree",
			tree: map[string]string{
				"locked/a.md": "prompt-factory",
				"open/b.md":   "prompt-factory",
			},
			failOn: map[string]error{"readdir:locked": fs.ErrPermission},
			wantTree: map[string]string{
				"locked/":     "",
				"locked/a.md": "prompt-factory",
				"open/":       "",
				"open/b.md":   "AetherCore.PromptFoundry",
			},
			wantStats: &status.Stats{FilesUpdated: 1, TotalReplacements: 1, Errors: 1},
			wantErr:   "✗ reading directory locked: permission denied",
		},
		{
			name:      "binary_content_in_text_file",
			tree:      map[string]string{"blob.txt": "\xff\xfeprompt-factory"},
			wantTree:  map[string]string{"blob.txt": "\xff\xfeprompt-factory"},
			wantStats: &status.Stats{Errors: 1},
			wantErr:   "✗ reading file blob.txt: not valid UTF-8 text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			root := t.TempDir()
			writeTree(t, root, tt.tree)

			stats := e.run(t, root, nil, false, faultyFiles{failOn: tt.failOn})

			if diff := cmp.Diff(tt.wantStats, stats); diff != "" {
				t.Errorf("stats mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantTree, readTree(t, root))
			assert.Contains(t, e.errs.String(), tt.wantErr)
		})
	}
}

func TestRun_RootErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.md")
	require.NoError(t, os.WriteFile(file, []byte("prompt-factory"), 0o644))

	tests := []struct {
		name    string
		root    string
		ctx     func(context.Context) context.Context
		wantIs  error
		wantMsg string
	}{
		{
			name:   "missing_root",
			root:   filepath.Join(dir, "missing"),
			wantIs: fs.ErrNotExist,
		},
		{
			name:   "root_is_a_file",
			root:   file,
			wantIs: migrate.ErrRootNotDirectory,
		},
		{
			name: "cancelled_context",
			root: dir,
			ctx: func(ctx context.Context) context.Context {
				ctx, cancel := context.WithCancel(ctx)
				cancel()
				return ctx
			},
			wantIs: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			ctx := e.ctx
			if tt.ctx != nil {
				ctx = tt.ctx(ctx)
			}

			m, err := migrate.New(migrate.Options{Root: tt.root, Config: config.Default()})
			require.NoError(t, err)

			stats, err := m.Run(ctx)
			require.Error(t, err)
			assert.Nil(t, stats)
			assert.True(t, errors.Is(err, tt.wantIs), "got %v", err)
			assert.Empty(t, e.out.String(), "nothing is printed before the root is validated")
		})
	}

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "prompt-factory", string(content))
}

func TestNew(t *testing.T) {
	_, err := migrate.New(migrate.Options{Root: "."})
	assert.True(t, errors.Is(err, migrate.ErrNoConfig))

	m, err := migrate.New(migrate.Options{Config: &config.Config{}})
	require.NoError(t, err, "unvalidated config is validated")
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, m.Root(), "empty root means the working directory")

	_, err = migrate.New(migrate.Options{Config: &config.Config{
		Mappings: []tokenmap.Mapping{{Legacy: "", Canonical: "x"}},
	}})
	assert.True(t, errors.Is(err, tokenmap.ErrEmptyToken))
}

func TestRun_ConfigFileIsNotRewritten(t *testing.T) {
	e := newTestEnv(t)
	root := t.TempDir()
	cfgBody := "mappings:\n  - legacy: prompt-factory\n    canonical: AetherCore.PromptFoundry\n"
	writeTree(t, root, map[string]string{
		".aethermig.yaml": cfgBody,
		"a.md":            "prompt-factory",
	})

	cfg, err := config.Resolve(e.ctx, "", root)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Location())

	stats := e.run(t, root, cfg, false, nil)

	assert.Equal(t, 1, stats.FilesUpdated)
	assert.Equal(t, map[string]string{
		".aethermig.yaml": cfgBody,
		"a.md":            "AetherCore.PromptFoundry",
	}, readTree(t, root))
}

func TestRun_PreservesFileMode(t *testing.T) {
	e := newTestEnv(t)
	root := t.TempDir()
	script := filepath.Join(root, "run.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo prompt-factory\n"), 0o755))

	stats := e.run(t, root, nil, false, nil)
	require.Equal(t, 1, stats.FilesUpdated)

	info, err := os.Stat(script)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}

func TestRun_KeepsUnrelatedTempNamedFiles(t *testing.T) {
	e := newTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.md":               "prompt-factory",
		"a.md.aethermig.tmp": "USER DATA",
	})

	stats := e.run(t, root, nil, false, nil)
	require.Equal(t, 1, stats.FilesUpdated)

	assert.Equal(t, map[string]string{
		"a.md":               "AetherCore.PromptFoundry",
		"a.md.aethermig.tmp": "USER DATA",
	}, readTree(t, root))
}

func TestOSFileManager_WriteFileAtomic(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces_content_and_keeps_mode", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.md")
		require.NoError(t, os.WriteFile(path, []byte("before"), 0o600))

		require.NoError(t, migrate.OSFileManager{}.WriteFileAtomic(ctx, path, []byte("after")))

		assert.Equal(t, map[string]string{"notes.md": "after"}, readTree(t, dir))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("failed_rename_leaves_no_temp_file", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "target")
		require.NoError(t, os.Mkdir(target, 0o755))

		err := migrate.OSFileManager{}.WriteFileAtomic(ctx, target, []byte("content"))
		require.Error(t, err)

		assert.Equal(t, map[string]string{"target/": ""}, readTree(t, dir))
	})

	t.Run("missing_file_is_an_error", func(t *testing.T) {
		dir := t.TempDir()
		err := migrate.OSFileManager{}.WriteFileAtomic(ctx, filepath.Join(dir, "gone.md"), []byte("x"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
		assert.Empty(t, readTree(t, dir))
	})
}

func TestRun_SymlinksRenamedNotFollowed(t *testing.T) {
	e := newTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/notes.md": "see prompt-factory",
	})
	if err := os.Symlink("..", filepath.Join(root, "prompt-factory-link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	stats := e.run(t, root, nil, false, nil)

	want := &status.Stats{FilesUpdated: 1, FilesRenamed: 1, TotalReplacements: 2}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[string]string{
		"docs/":                         "",
		"docs/notes.md":                 "see AetherCore.PromptFoundry",
		"AetherCore.PromptFoundry-link": "-> ..",
	}, readTree(t, root))
	assert.Empty(t, e.errs.String())
}
