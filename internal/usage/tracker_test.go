package usage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/summon/internal/logger"
	"github.com/MrSnakeDoc/summon/internal/store/file"
)

type brokenBlob struct{ writes int }

func (b *brokenBlob) Read(context.Context) ([]byte, error) { return nil, errors.New("unreadable") }
func (b *brokenBlob) Write(context.Context, []byte) error {
	b.writes++
	return errors.New("read-only")
}

func TestRecordLaunchPersists(t *testing.T) {
	ctx := context.Background()
	blob := file.NewBlob(filepath.Join(t.TempDir(), "usage_stats.json"))

	tracker := New(ctx, blob, logger.Nop())
	tracker.RecordLaunch(ctx, "记事本")
	tracker.RecordLaunch(ctx, "记事本")
	tracker.RecordLaunch(ctx, "vim")
	tracker.RecordLaunch(ctx, "")

	assert.Equal(t, int64(2), tracker.Count("记事本"))
	assert.Equal(t, int64(0), tracker.Count("emacs"))

	reloaded := New(ctx, blob, logger.Nop())
	assert.Equal(t, map[string]int64{"记事本": 2, "vim": 1}, reloaded.Snapshot())
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	ctx := context.Background()
	blob := file.NewBlob(filepath.Join(t.TempDir(), "usage_stats.json"))
	require.NoError(t, blob.Write(ctx, []byte(`["not", "a", "map"]`)))

	tracker := New(ctx, blob, logger.Nop())
	assert.Empty(t, tracker.Snapshot())

	tracker.RecordLaunch(ctx, "vim")
	assert.Equal(t, int64(1), New(ctx, blob, logger.Nop()).Count("vim"))
}

func TestPersistenceErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	blob := &brokenBlob{}

	tracker := New(ctx, blob, logger.Nop())
	tracker.RecordLaunch(ctx, "vim")

	assert.Equal(t, int64(1), tracker.Count("vim"))
	assert.Equal(t, 1, blob.writes)
}

func TestMemoryOnly(t *testing.T) {
	tracker := New(context.Background(), nil, logger.Nop())
	tracker.RecordLaunch(context.Background(), "vim")
	assert.Equal(t, int64(1), tracker.Count("vim"))
}

func TestConcurrentLaunches(t *testing.T) {
	ctx := context.Background()
	blob := file.NewBlob(filepath.Join(t.TempDir(), "usage_stats.json"))
	tracker := New(ctx, blob, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tracker.RecordLaunch(ctx, fmt.Sprintf("app%d", n%4))
		}(i)
	}
	wg.Wait()

	snapshot := tracker.Snapshot()
	require.Len(t, snapshot, 4)
	for name, count := range snapshot {
		assert.Equal(t, int64(5), count, name)
	}
	assert.Equal(t, snapshot, New(ctx, blob, logger.Nop()).Snapshot())
}
