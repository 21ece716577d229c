package frontier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/prodcrawl/internal/analyzer"
	"github.com/jmylchreest/prodcrawl/internal/config"
	"github.com/jmylchreest/prodcrawl/internal/tracker"
)

func newTestFrontier(t *testing.T, maxDepth int) (*Frontier, *tracker.Tracker) {
	t.Helper()
	an, err := analyzer.New(config.DefaultPatterns(), config.DefaultProductURLWeights())
	require.NoError(t, err)

	tr := tracker.New()
	f, err := New("https://shop.test/", an, tr, maxDepth)
	require.NoError(t, err)
	return f, tr
}

func TestNew_RequiresHost(t *testing.T) {
	an, err := analyzer.New(config.DefaultPatterns(), config.DefaultProductURLWeights())
	require.NoError(t, err)

	_, err = New("/relative/path", an, tracker.New(), 3)
	assert.Error(t, err)
}

func TestAdd_Deduplicates(t *testing.T) {
	f, tr := newTestFrontier(t, 3)

	added := f.Add([]string{
		"https://shop.test/a/b",
		"https://shop.test/a/b/",
		"https://shop.test/a/b#reviews",
	}, 0)

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, 1, tr.Count())
}

func TestAdd_NeverReadmitsPopped(t *testing.T) {
	f, _ := newTestFrontier(t, 3)

	require.Equal(t, 1, f.Add([]string{"https://shop.test/x"}, 0))

	u, depth, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.test/x", u)
	assert.Equal(t, 1, depth)

	assert.Equal(t, 0, f.Add([]string{"https://shop.test/x"}, 0))
}

func TestAdd_DepthLimit(t *testing.T) {
	f, tr := newTestFrontier(t, 1)

	assert.Equal(t, 1, f.Add([]string{"https://shop.test/depth1"}, 0))
	assert.Equal(t, 0, f.Add([]string{"https://shop.test/depth2"}, 1))
	assert.Equal(t, 1, tr.Count())
}

func TestAdd_SeedAtDepthZero(t *testing.T) {
	f, _ := newTestFrontier(t, 0)

	require.Equal(t, 1, f.Add([]string{"https://shop.test/"}, -1))

	_, depth, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestAdd_ScopesToHostAndScheme(t *testing.T) {
	f, _ := newTestFrontier(t, 3)

	added := f.Add([]string{
		"https://other.test/x",
		"ftp://shop.test/x",
		"mailto:sales@shop.test",
		"https://shop.test/ok",
	}, 0)

	assert.Equal(t, 1, added)
}

func TestNext_PriorityOrder(t *testing.T) {
	f, _ := newTestFrontier(t, 3)

	f.Add([]string{"https://shop.test/login"}, 0)          // dead end: 100
	f.Add([]string{"https://shop.test/category/shoes"}, 0) // default: 10
	f.Add([]string{"https://shop.test/p/123"}, 0)          // product: 3

	want := []string{
		"https://shop.test/p/123",
		"https://shop.test/category/shoes",
		"https://shop.test/login",
	}
	for _, expected := range want {
		u, _, err := f.Next()
		require.NoError(t, err)
		assert.Equal(t, expected, u)
	}
}

func TestNext_TieBreakIsInsertionOrder(t *testing.T) {
	f, _ := newTestFrontier(t, 3)

	urls := []string{
		"https://shop.test/one",
		"https://shop.test/two",
		"https://shop.test/three",
	}
	f.Add(urls, 0)

	for _, expected := range urls {
		u, _, err := f.Next()
		require.NoError(t, err)
		assert.Equal(t, expected, u)
	}
}

func TestNext_BlocksUntilFinish(t *testing.T) {
	f, _ := newTestFrontier(t, 3)

	result := make(chan error, 1)
	go func() {
		_, _, err := f.Next()
		result <- err
	}()

	select {
	case <-result:
		t.Fatal("Next() returned on an empty, active frontier")
	case <-time.After(20 * time.Millisecond):
	}

	f.Finish()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrFinished)
	case <-time.After(time.Second):
		t.Fatal("Next() did not return after Finish()")
	}
}

func TestNext_DrainsQueueBeforeFinishing(t *testing.T) {
	f, _ := newTestFrontier(t, 3)

	f.Add([]string{"https://shop.test/x"}, 0)
	f.Finish()

	// Finish() releases waiters, but queued items must still drain.
	u, _, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.test/x", u)

	_, _, err = f.Next()
	assert.ErrorIs(t, err, ErrFinished)
}

func TestScore_Buckets(t *testing.T) {
	f, _ := newTestFrontier(t, 3)

	assert.Equal(t, priorityLikelyProduct, f.Score("https://shop.test/p/123"))
	assert.Equal(t, priorityDeadEnd, f.Score("https://shop.test/login"))
	assert.Equal(t, priorityDefault, f.Score("https://shop.test/category/shoes"))
}

func TestScore_StrongProductWithBoostedWeights(t *testing.T) {
	weights := config.DefaultProductURLWeights()
	weights[config.URLWeightProductPattern] = 2.0

	an, err := analyzer.New(config.DefaultPatterns(), weights)
	require.NoError(t, err)

	f, err := New("https://shop.test/", an, tracker.New(), 3)
	require.NoError(t, err)

	assert.Equal(t, priorityStrongProduct, f.Score("https://shop.test/p/123"))
}
