// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func openTest(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpenCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)
	defer c.Close()

	for _, sub := range []string{"markdown_cache", "json_cache", "pdf"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	_, err = os.Stat(filepath.Join(dir, "index.db"))
	assert.NoError(t, err)
}

func TestMissIsNotError(t *testing.T) {
	c := openTest(t)

	text, ok, err := c.Markdown("2401.00001v1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, text)

	pages, ok, err := c.Pages("2401.00001v1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, pages)

	_, ok, err = c.Entry(context.Background(), "2401.00001v1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyMarkdownIsMiss(t *testing.T) {
	c := openTest(t)
	require.NoError(t, os.WriteFile(c.MarkdownPath("x"), []byte("  \n"), 0o644))
	_, ok, err := c.Markdown("x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreAndRead(t *testing.T) {
	c := openTest(t)
	c.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	paper := types.Paper{ID: "cs/0112017v1", Title: "Old Style"}

	_, err := c.StorePDF(paper.ID, strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, c.HasPDF(paper.ID))

	path, err := c.Store(ctx, paper, []string{"intro text", "results text"})
	require.NoError(t, err)
	assert.Equal(t, "cs_0112017v1.md", filepath.Base(path))

	text, ok, err := c.Markdown(paper.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "# Old Style\n"))
	assert.Contains(t, text, "<!-- page 2 -->\n\nresults text")

	pages, ok, err := c.Pages(paper.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"intro text", "results text"}, pages)

	e, ok, err := c.Entry(ctx, paper.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, e.Pages)
	assert.Equal(t, "Old Style", e.Title)
	assert.Equal(t, c.PDFPath(paper.ID), e.PDFPath)
	assert.True(t, c.now().Equal(e.CachedAt))
}

func TestStoreIsIdempotent(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	paper := types.Paper{ID: "2401.00001v1", Title: "T"}

	_, err := c.Store(ctx, paper, []string{"v1"})
	require.NoError(t, err)
	_, err = c.Store(ctx, paper, []string{"v2", "more"})
	require.NoError(t, err)

	entries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Pages)

	pages, _, err := c.Pages(paper.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "more"}, pages)
}

func TestConcurrentStoreLeavesCompleteFile(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	paper := types.Paper{ID: "2401.00002v1"}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Store(ctx, paper, []string{fmt.Sprintf("writer %d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	pages, ok, err := c.Pages(paper.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, pages, 1)
	assert.True(t, strings.HasPrefix(pages[0], "writer "))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(c.MarkdownPath(paper.ID)), ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSafeID(t *testing.T) {
	assert.Equal(t, "2401.00001v1", SafeID("2401.00001v1"))
	assert.Equal(t, "math_0601001v2", SafeID("math/0601001v2"))
}
