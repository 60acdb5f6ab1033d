package text

import (
	"context"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/aethermig/pkg/tokenmap"
)

func TestRewriter_Rewrite(t *testing.T) {
	w := NewRewriter(tokenmap.Default())

	tests := []struct {
		name      string
		content   string
		want      string
		wantCount int
	}{
		{
			name:      "json_body",
			content:   `{"skill":"knowledge-orchestrator"}`,
			want:      `{"skill":"AetherCore.Orchestrator"}`,
			wantCount: 1,
		},
		{
			name:      "two_legacy_names_same_canonical",
			content:   "automation-graph and skill-messaging-bus",
			want:      "AetherCore.EventMesh and AetherCore.EventMesh",
			wantCount: 2,
		},
		{
			name:      "file_name",
			content:   "knowledge-orchestrator-config.json",
			want:      "AetherCore.Orchestrator-config.json",
			wantCount: 1,
		},
		{
			name:      "already_canonical",
			content:   "AetherCore.DeepForge",
			want:      "AetherCore.DeepForge",
			wantCount: 0,
		},
		{
			name:      "every_token",
			content:   "knowledge-orchestrator automation-graph optimization-profile deep-research-extension dealfinder-extension prompt-factory skill-messaging-bus",
			want:      "AetherCore.Orchestrator AetherCore.EventMesh AetherCore.OptiGraph AetherCore.DeepForge AetherCore.MarketSweep AetherCore.PromptFoundry AetherCore.EventMesh",
			wantCount: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := w.Rewrite(tt.content)
			assert.Equal(t, tt.want, string(res.ModifiedContent))
			assert.Equal(t, tt.content, string(res.OriginalContent))
			assert.Equal(t, tt.wantCount, res.ReplacementCount)
			assert.Equal(t, tt.wantCount > 0, res.WasModified)

			again := w.Rewrite(string(res.ModifiedContent))
			assert.Zero(t, again.ReplacementCount, "second rewrite should be a no-op")
		})
	}
}

func TestRewriter_LongestMatchPriority(t *testing.T) {
	m, err := tokenmap.New([]tokenmap.Mapping{
		{Legacy: "graph", Canonical: "G"},
		{Legacy: "automation-graph", Canonical: "AetherCore.EventMesh"},
	})
	require.NoError(t, err)

	res := NewRewriter(m).Rewrite("automation-graph graph")

	assert.Equal(t, "AetherCore.EventMesh G", string(res.ModifiedContent))
	assert.Equal(t, 2, res.ReplacementCount)
	assert.NotContains(t, string(res.ModifiedContent), "automation-G")
}

func TestRewriter_RewriteReader(t *testing.T) {
	w := NewRewriter(tokenmap.Default())
	ctx := context.Background()

	t.Run("matches_rewrite", func(t *testing.T) {
		content := "skills/prompt-factory and skills/automation-graph"
		got, err := w.RewriteReader(ctx, strings.NewReader(content))
		require.NoError(t, err)
		assert.Equal(t, w.Rewrite(content), got)
	})

	t.Run("no_tokens", func(t *testing.T) {
		got, err := w.RewriteReader(ctx, strings.NewReader("plain"))
		require.NoError(t, err)
		assert.False(t, got.WasModified)
		assert.Equal(t, "plain", string(got.ModifiedContent))
	})

	t.Run("read_error", func(t *testing.T) {
		boom := errors.Base("boom")
		_, err := w.RewriteReader(ctx, iotest.ErrReader(boom))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}
