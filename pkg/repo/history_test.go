package repo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testHistory(t *testing.T, storage Storage, opts ...HistoryOption) *History {
	t.Helper()
	opts = append([]HistoryOption{HistoryWithHistoryLimit(2), HistoryWithHistoryDir(t.TempDir())}, opts...)
	if storage != nil {
		opts = append(opts, HistoryWithStorage(storage))
	}
	h, err := NewHistory(zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	return h
}

func TestHistoryCurrent(t *testing.T) {
	ctx := context.Background()
	h := testHistory(t, nil)

	_, err := h.Current(ctx)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, h.Add(ctx, []byte(`{"/":{}}`)))
	data, err := h.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"/":{}}`, string(data))
	require.NoError(t, h.Close())
}

func TestHistoryPrune(t *testing.T) {
	ctx := context.Background()
	for name, storage := range testStorages(t) {
		t.Run(name, func(t *testing.T) {
			h := testHistory(t, storage)
			for i := 0; i < 6; i++ {
				require.NoError(t, h.Add(ctx, []byte(fmt.Sprint(i))))
				time.Sleep(2 * time.Millisecond)
			}
			snapshots, err := h.Snapshots(ctx)
			require.NoError(t, err)
			assert.Len(t, snapshots, 2)

			data, err := storage.Read(ctx, snapshots[0])
			require.NoError(t, err)
			assert.Equal(t, "5", string(data), "newest snapshot first")

			data, err = h.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, "5", string(data))
		})
	}
}

func TestHistorySnapshotOrder(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	for _, day := range []string{"2017-10-21", "2017-10-23", "2017-10-22"} {
		require.NoError(t, storage.Write(ctx, HistorySitemapJSONPrefix+day+HistorySitemapJSONSuffix, []byte(day)))
	}
	require.NoError(t, storage.Write(ctx, CurrentKey, []byte("current")))
	require.NoError(t, storage.Write(ctx, "unrelated.json", []byte("x")))
	h := testHistory(t, storage)

	snapshots, err := h.Snapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"docsite-sitemap-2017-10-23.json",
		"docsite-sitemap-2017-10-22.json",
		"docsite-sitemap-2017-10-21.json",
	}, snapshots)

	require.NoError(t, h.prune(ctx))
	snapshots, err = h.Snapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"docsite-sitemap-2017-10-23.json",
		"docsite-sitemap-2017-10-22.json",
	}, snapshots)
}

func TestHistoryValidator(t *testing.T) {
	ctx := context.Background()
	h := testHistory(t, nil, HistoryWithValidator(func(data []byte) error {
		if string(data) == "broken" {
			return errors.New("not a document")
		}
		return nil
	}))

	require.NoError(t, h.Add(ctx, []byte("good")))
	err := h.Add(ctx, []byte("broken"))
	require.ErrorIs(t, err, ErrInvalidDocument)
	assert.Contains(t, err.Error(), "not a document")

	data, err := h.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "good", string(data))
	snapshots, err := h.Snapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}
