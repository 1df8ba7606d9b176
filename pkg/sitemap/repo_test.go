package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foomo/docsite/pkg/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testRepoHistory(t *testing.T) *repo.History {
	t.Helper()
	storage, err := repo.NewMemoryStorage(context.Background())
	require.NoError(t, err)
	h, err := repo.NewHistory(zaptest.NewLogger(t), repo.HistoryWithStorage(storage))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestRepoLoad(t *testing.T) {
	ctx := context.Background()
	h := testRepoHistory(t)
	r := NewRepo(zaptest.NewLogger(t), h)

	assert.Error(t, r.Load(ctx))
	assert.False(t, r.Loaded())
	assert.Empty(t, r.URLSet(""))

	data, err := Marshal(testTree("/help"))
	require.NoError(t, err)
	require.NoError(t, h.Add(ctx, data))

	require.NoError(t, r.Load(ctx))
	assert.True(t, r.Loaded())
	set := r.URLSet("https://arxiv.org")
	assert.Equal(t, "https://arxiv.org/help", set["/help"].Path)
	assert.Equal(t, "/help", r.URLSet("")["/help"].Path, "served set is not modified")
}

func TestRepoUpdateFromURL(t *testing.T) {
	data, err := Marshal(testTree("/labs"))
	require.NoError(t, err)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer server.Close()

	ctx := context.Background()
	h := testRepoHistory(t)
	r := NewRepo(zaptest.NewLogger(t), h, WithURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, r.Update(ctx))
	assert.ElementsMatch(t, []string{"/labs"}, r.URLSet("").Keys())

	current, err := h.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, data, current)
}

func TestRepoUpdateBadResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewRepo(zaptest.NewLogger(t), testRepoHistory(t), WithURL(server.URL))
	assert.Error(t, r.Update(context.Background()))
	assert.False(t, r.Loaded())
}

func TestRepoStartPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := testRepoHistory(t)
	r := NewRepo(zaptest.NewLogger(t), h, WithPollInterval(10*time.Millisecond))

	done := make(chan error, 1)
	go func() {
		done <- r.Start(ctx)
	}()

	data, err := Marshal(testTree("/help"))
	require.NoError(t, err)
	require.NoError(t, h.Add(ctx, data))
	assert.Eventually(t, r.Loaded, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("start did not return")
	}
}

func TestRepoUpdateRejectsInvalidDocument(t *testing.T) {
	data, err := Marshal(testTree("/labs"))
	require.NoError(t, err)
	var body atomic.Value
	body.Store(data)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body.Load().([]byte))
	}))
	defer server.Close()

	ctx := context.Background()
	storage, err := repo.NewMemoryStorage(ctx)
	require.NoError(t, err)
	h, err := repo.NewHistory(zaptest.NewLogger(t), repo.HistoryWithStorage(storage), repo.HistoryWithValidator(Validate))
	require.NoError(t, err)
	defer h.Close()

	r := NewRepo(zaptest.NewLogger(t), h, WithURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, r.Update(ctx))

	invalid := []byte(`{"/": {"modified": "yesterday"}}`)
	body.Store(invalid)
	assert.Error(t, r.Update(ctx))
	assert.ElementsMatch(t, []string{"/labs"}, r.URLSet("").Keys(), "previous sitemap is still served")
	assert.ErrorIs(t, h.Add(ctx, invalid), repo.ErrInvalidDocument)

	current, err := h.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, data, current)
}
