package sitemap

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foomo/docsite/content"
	"github.com/foomo/docsite/pkg/metrics"
	"github.com/foomo/docsite/pkg/repo"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	// Repo holds the sitemap currently being served. It is restored from
	// history and optionally refreshed from a remote document.
	Repo struct {
		l            *zap.Logger
		url          string
		pollInterval time.Duration
		loaded       *atomic.Bool
		history      *repo.History
		httpClient   *http.Client
		set          content.URLSet
		setLock      sync.RWMutex
	}
	Option func(*Repo)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewRepo(l *zap.Logger, history *repo.History, opts ...Option) *Repo {
	inst := &Repo{
		l:          l.Named("sitemap.repo"),
		loaded:     &atomic.Bool{},
		history:    history,
		httpClient: http.DefaultClient,
		set:        content.URLSet{},
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithURL remote sitemap document, fetched on update and persisted in history
func WithURL(v string) Option {
	return func(o *Repo) {
		o.url = v
	}
}

func WithHTTPClient(v *http.Client) Option {
	return func(o *Repo) {
		o.httpClient = v
	}
}

// WithPollInterval update periodically, zero disables polling
func WithPollInterval(v time.Duration) Option {
	return func(o *Repo) {
		o.pollInterval = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (r *Repo) Loaded() bool {
	return r.loaded.Load()
}

// URLSet copy of the current sitemap with relative paths prefixed by urlRoot
func (r *Repo) URLSet(urlRoot string) content.URLSet {
	r.setLock.RLock()
	set := r.set.Clone()
	r.setLock.RUnlock()
	PrefixPaths(set, urlRoot)
	return set
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Load reads the current sitemap from history
func (r *Repo) Load(ctx context.Context) error {
	data, err := r.history.Current(ctx)
	if err != nil {
		metrics.SitemapLoadCounter.WithLabelValues("error").Inc()
		return err
	}
	return r.load(bytes.NewReader(data))
}

// Update fetches the remote document, persists it and swaps it in. Without
// a remote url it reloads from history.
func (r *Repo) Update(ctx context.Context) error {
	if r.url == "" {
		return r.Load(ctx)
	}
	data, err := r.get(ctx, r.url)
	if err != nil {
		metrics.SitemapLoadCounter.WithLabelValues("error").Inc()
		return err
	}
	if err := r.load(bytes.NewReader(data)); err != nil {
		return err
	}
	if err := r.history.Add(ctx, data); err != nil {
		r.l.Error("could not persist sitemap in history", zap.Error(err))
	}
	return nil
}

func (r *Repo) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	l := r.l.Named("start")

	l.Debug("trying to restore previous sitemap")
	if err := r.Load(gCtx); errors.Is(err, os.ErrNotExist) {
		l.Info("previous sitemap file does not exist")
	} else if err != nil {
		l.Warn("could not restore previous sitemap", zap.Error(err))
	} else {
		l.Info("restored previous sitemap")
	}

	if r.url != "" {
		if err := r.Update(gCtx); err != nil {
			l.Error("failed to update initial state", zap.Error(err))
		}
	}

	if r.pollInterval > 0 {
		g.Go(func() error {
			l.Debug("starting poll routine")
			return r.PollRoutine(gCtx)
		})
	}

	return g.Wait()
}

func (r *Repo) PollRoutine(ctx context.Context) error {
	l := r.l.Named("routine.poll")
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			if err := r.Update(ctx); err != nil {
				l.Error("update failed", zap.Error(err))
			} else {
				l.Debug("update success")
			}
		}
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (r *Repo) load(reader io.Reader) error {
	set, err := Decode(reader, "")
	if err != nil {
		metrics.SitemapLoadCounter.WithLabelValues("error").Inc()
		return err
	}
	r.setLock.Lock()
	r.set = set
	r.setLock.Unlock()
	r.loaded.Store(true)
	metrics.SitemapLoadCounter.WithLabelValues("success").Inc()
	metrics.SitemapNodesGauge.WithLabelValues().Set(float64(set.Len()))
	r.l.Info("sitemap loaded", zap.Int("nodes", set.Len()))
	return nil
}

func (r *Repo) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create get sitemap request")
	}
	response, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sitemap")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("bad response code from sitemap %q want %d", response.Status, http.StatusOK)
	}

	data, err := io.ReadAll(response.Body)
	return data, errors.Wrap(err, "failed to read sitemap")
}
