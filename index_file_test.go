package hashlinks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestFileIndex_FileFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "links.json")

	i, err := NewFileIndex(path)
	require.NoError(t, err)
	require.NoError(t, i.Put(ctx, "plkrg7l0", "https://example.com/a"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var links map[string]string
	require.NoError(t, json.Unmarshal(data, &links))
	assert.Equal(t, map[string]string{"plkrg7l0": "https://example.com/a"}, links)
}

// Separate FileIndex values hold separate file locks, like separate processes would.
func TestFileIndex_SharedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "links.json")

	const writers = 8
	indexes := make([]*FileIndex, writers)
	for n := range indexes {
		i, err := NewFileIndex(path)
		require.NoError(t, err)
		indexes[n] = i
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for n, i := range indexes {
		wg.Add(1)
		go func(n int, i *FileIndex) {
			defer wg.Done()
			// every writer also stores a link of its own
			assert.NoError(t, i.Put(ctx, ComputeID(collidingA, string(rune('a'+n))), collidingA))

			err := i.Put(ctx, "shared", ComputeID(collidingB, string(rune('a'+n))))
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, xerrors.Is(err, ErrCollision), "got %v", err)
		}(n, i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var links map[string]string
	require.NoError(t, json.Unmarshal(data, &links))
	assert.Len(t, links, writers+1)
}

func TestFileIndex_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	i, err := NewFileIndex(path)
	require.NoError(t, err)

	_, err = i.Lookup(context.Background(), "plkrg7l0")
	require.Error(t, err)
	assert.False(t, xerrors.Is(err, ErrNotFound))
}
