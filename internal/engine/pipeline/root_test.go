package pipeline_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/engine/pipeline"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package-lock.json"), "{}")
	nested := filepath.Join(root, "packages", "web", "src")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	t.Run("in start directory", func(t *testing.T) {
		got, ok := pipeline.FindRoot(root, "package-lock.json")
		require.True(t, ok)
		assert.Equal(t, root, got)
	})

	t.Run("in ancestor", func(t *testing.T) {
		got, ok := pipeline.FindRoot(nested, "package-lock.json")
		require.True(t, ok)
		assert.Equal(t, root, got)
	})

	t.Run("nearest wins", func(t *testing.T) {
		inner := filepath.Join(root, "packages", "web")
		writeFile(t, filepath.Join(inner, "package-lock.json"), "{}")
		defer func() { _ = os.Remove(filepath.Join(inner, "package-lock.json")) }()

		got, ok := pipeline.FindRoot(nested, "package-lock.json")
		require.True(t, ok)
		assert.Equal(t, inner, got)
	})

	t.Run("missing", func(t *testing.T) {
		_, ok := pipeline.FindRoot(nested, "guard-marker-that-does-not-exist.lock")
		assert.False(t, ok)
	})
}

func TestFindRoot_DepthBound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "marker"), "")

	deep := filepath.Join(append([]string{root}, strings.Split(strings.Repeat("d/", domain.MaxRootDepth), "/")...)...)
	require.NoError(t, os.MkdirAll(deep, 0o750))

	_, ok := pipeline.FindRoot(deep, "marker")
	assert.False(t, ok, "marker beyond the depth bound must not be found")

	shallow := filepath.Join(append([]string{root}, strings.Split(strings.Repeat("d/", domain.MaxRootDepth-1), "/")...)...)
	got, ok := pipeline.FindRoot(shallow, "marker")
	require.True(t, ok)
	assert.Equal(t, root, got)
}

func TestLocateRoot_FallsBackToManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), "{}")

	got, ok := pipeline.LocateRoot(root, manager(t, "pnpm"))
	require.True(t, ok)
	assert.Equal(t, root, got)
}
