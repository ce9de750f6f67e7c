package hashlinks

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestAssign_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestShortener(NewMemoryIndex())

	for _, longURL := range []string{
		"https://example.com/a",
		"https://golang.org/",
		"https://例子.测试/路径",
		"not even a URL",
	} {
		id, err := s.Assign(ctx, longURL)
		require.NoError(t, err)
		assert.Equal(t, ComputeID(longURL, ""), id)

		got, err := s.Resolve(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, longURL, got)
	}
}

func TestAssign_Idempotent(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	s := newTestShortener(index)

	id1, err := s.Assign(ctx, "https://example.com/a")
	require.NoError(t, err)
	id2, err := s.Assign(ctx, "https://example.com/a")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, index.Len())
}

func TestAssign_Collision(t *testing.T) {
	ctx := context.Background()
	index := &countingIndex{Index: NewMemoryIndex()}
	s := newTestShortener(index)

	require.Equal(t, ComputeID(collidingA, ""), ComputeID(collidingB, ""))

	idA, err := s.Assign(ctx, collidingA)
	require.NoError(t, err)
	assert.Equal(t, "47d90svq", idA)

	idB, err := s.Assign(ctx, collidingB)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, ComputeID(collidingB, idA), idB)
	assert.Equal(t, []string{idA, idA, idB}, index.puts)

	got, err := s.Resolve(ctx, idA)
	require.NoError(t, err)
	assert.Equal(t, collidingA, got)

	got, err = s.Resolve(ctx, idB)
	require.NoError(t, err)
	assert.Equal(t, collidingB, got)

	// the second URL keeps its probed ID
	again, err := s.Assign(ctx, collidingB)
	require.NoError(t, err)
	assert.Equal(t, idB, again)
}

func TestAssign_EngineeredCollisionChain(t *testing.T) {
	ctx := context.Background()
	s := newTestShortener(NewMemoryIndex())

	// every unsalted ID is "v", and salted IDs are derived from the salt only,
	// so "https://example.com/c" has to probe past two taken IDs
	s.computeID = func(target, salt string) string {
		if salt == "" {
			return "v"
		}
		return salt + "v"
	}

	id1, err := s.Assign(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "v", id1)

	id2, err := s.Assign(ctx, "https://example.com/b")
	require.NoError(t, err)
	assert.Equal(t, "vv", id2)

	id3, err := s.Assign(ctx, "https://example.com/c")
	require.NoError(t, err)
	assert.Equal(t, "vvv", id3)

	for id, want := range map[string]string{
		"v":   "https://example.com/a",
		"vv":  "https://example.com/b",
		"vvv": "https://example.com/c",
	} {
		got, err := s.Resolve(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// re-assigning follows the same probes and stops at its own ID
	again, err := s.Assign(ctx, "https://example.com/c")
	require.NoError(t, err)
	assert.Equal(t, id3, again)
}

func TestAssign_ConcurrentWritersConverge(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	s := newTestShortener(index)

	_, err := s.Assign(ctx, collidingA)
	require.NoError(t, err)

	const writers = 16
	ids := make([]string, writers)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id, err := s.Assign(ctx, collidingB)
			assert.NoError(t, err)
			ids[w] = id
		}(w)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 2, index.Len())
}

func TestAssign_IndexError(t *testing.T) {
	boom := xerrors.New("table is on fire")
	s := newTestShortener(failingIndex{err: boom})

	_, err := s.Assign(context.Background(), "https://example.com/a")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, boom))
	assert.False(t, xerrors.Is(err, ErrCollision))
}

func TestAssign_StopsProbingWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newTestShortener(NewMemoryIndex())
	s.computeID = func(target, salt string) string { return "v" }

	_, err := s.Assign(ctx, "https://example.com/a")
	require.NoError(t, err)

	cancel()
	_, err = s.Assign(ctx, "https://example.com/b")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, context.Canceled))
}

func TestResolve_NotFound(t *testing.T) {
	s := newTestShortener(NewMemoryIndex())

	_, err := s.Resolve(context.Background(), "plkrg7l0")
	assert.True(t, xerrors.Is(err, ErrNotFound))
}

func TestResolve_IndexError(t *testing.T) {
	boom := xerrors.New("connection reset")
	s := newTestShortener(failingIndex{err: boom})

	_, err := s.Resolve(context.Background(), "plkrg7l0")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, boom))
	assert.False(t, xerrors.Is(err, ErrNotFound))
}

func TestResolve_UnassignableIDsSkipIndex(t *testing.T) {
	ctx := context.Background()
	index := &countingIndex{Index: NewDynamoDBIndex(newFakeDynamoDB(), "links")}
	s := newTestShortener(index)

	for _, id := range []string{"", strings.Repeat("a", 3000), "ZZZ!", "plkrg7l0x", "wxyz"} {
		_, err := s.Resolve(ctx, id)
		assert.True(t, xerrors.Is(err, ErrNotFound), "id %q: got %v", id, err)
	}
	assert.Equal(t, 0, index.calls())
}
