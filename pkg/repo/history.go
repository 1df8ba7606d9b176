package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	HistorySitemapJSONPrefix = "docsite-sitemap-"
	HistorySitemapJSONSuffix = ".json"
	CurrentKey               = HistorySitemapJSONPrefix + "current" + HistorySitemapJSONSuffix

	// fixed width so that snapshot keys sort by time
	snapshotTimeFormat = "2006-01-02T15:04:05.000000000Z"
)

// ErrInvalidDocument a document was rejected by the history validator
var ErrInvalidDocument = errors.New("invalid document")

type (
	// History keeps the current sitemap document next to a limited number of
	// timestamped snapshots
	History struct {
		l        *zap.Logger
		storage  Storage
		dir      string
		limit    int
		validate func(data []byte) error
		mu       sync.RWMutex
	}
	HistoryOption func(*History)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// HistoryWithHistoryLimit number of snapshots kept besides the current one
func HistoryWithHistoryLimit(v int) HistoryOption {
	return func(o *History) {
		o.limit = v
	}
}

// HistoryWithHistoryDir directory of the default filesystem storage
func HistoryWithHistoryDir(v string) HistoryOption {
	return func(o *History) {
		o.dir = v
	}
}

func HistoryWithStorage(s Storage) HistoryOption {
	return func(o *History) {
		o.storage = s
	}
}

// HistoryWithValidator rejects documents before anything is written
func HistoryWithValidator(fn func(data []byte) error) HistoryOption {
	return func(o *History) {
		o.validate = fn
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewHistory(l *zap.Logger, opts ...HistoryOption) (*History, error) {
	inst := &History{
		l:     l.Named("history"),
		dir:   "/var/lib/docsite",
		limit: 2,
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.storage == nil {
		storage, err := NewFilesystemStorage(inst.dir)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create history storage")
		}
		inst.storage = storage
	}
	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Add stores data as a new snapshot and makes it the current document.
// Snapshots beyond the limit are removed afterwards.
func (h *History) Add(ctx context.Context, data []byte) error {
	if h.validate != nil {
		if err := h.validate(data); err != nil {
			return errors.Wrap(ErrInvalidDocument, err.Error())
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	key := HistorySitemapJSONPrefix + time.Now().UTC().Format(snapshotTimeFormat) + HistorySitemapJSONSuffix
	if err := h.storage.Write(ctx, key, data); err != nil {
		return errors.Wrapf(err, "failed to write snapshot %q", key)
	}
	if err := h.storage.Write(ctx, CurrentKey, data); err != nil {
		return errors.Wrap(err, "failed to write current document")
	}
	h.l.Debug("added snapshot", zap.String("snapshot", key), zap.Int("bytes", len(data)))
	return h.prune(ctx)
}

// Current returns the current document, os.ErrNotExist if there is none yet
func (h *History) Current(ctx context.Context) ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.storage.Read(ctx, CurrentKey)
}

// Snapshots keys of all stored snapshots, newest first
func (h *History) Snapshots(ctx context.Context) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshots(ctx)
}

func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.storage == nil {
		return nil
	}
	return h.storage.Close()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *History) snapshots(ctx context.Context) ([]string, error) {
	keys, err := h.storage.List(ctx, HistorySitemapJSONPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	var snapshots []string
	for _, key := range keys {
		if key != CurrentKey && strings.HasSuffix(key, HistorySitemapJSONSuffix) {
			snapshots = append(snapshots, key)
		}
	}
	return snapshots, nil
}

// prune deletes the oldest snapshots beyond the limit
func (h *History) prune(ctx context.Context) error {
	snapshots, err := h.snapshots(ctx)
	if err != nil || len(snapshots) <= h.limit {
		return err
	}
	var errs error
	for _, key := range snapshots[h.limit:] {
		h.l.Debug("removing snapshot", zap.String("snapshot", key))
		errs = multierr.Append(errs, errors.Wrapf(h.storage.Delete(ctx, key), "failed to remove snapshot %q", key))
	}
	return errs
}
