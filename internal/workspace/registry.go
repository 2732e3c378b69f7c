// Package workspace keeps one product list and one form dialog per browser.
package workspace

import (
	"context"
	"net/http"
	"sync"
	"time"

	"catalogconsole/internal/catalog"
	"catalogconsole/internal/errs"
	"catalogconsole/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogAPI is everything a workspace needs from the backend.
type CatalogAPI interface {
	catalog.ProductSource
	catalog.ProductWriter
	GetProduct(ctx context.Context, id int64) (models.Product, error)
}

type Workspace struct {
	ID    uuid.UUID
	Store *catalog.Store
	Form  *catalog.Form

	api CatalogAPI

	mu       sync.Mutex
	lastSeen time.Time
	syncedAt time.Time
}

// Product finds id in the held list, falling back to the backend for ids
// the list does not hold (a deep link to an update dialog).
func (w *Workspace) Product(ctx context.Context, id int64) (models.Product, error) {
	if p, ok := w.Store.Lookup(id); ok {
		return p, nil
	}
	p, err := w.api.GetProduct(ctx, id)
	if err != nil {
		if errs.Status(err) == http.StatusNotFound {
			return models.Product{}, &errs.Error{Kind: errs.KindNotFound, Op: "get", Status: http.StatusNotFound, Err: err}
		}
		return models.Product{}, err
	}
	if p.ID == 0 {
		return models.Product{}, errs.New(errs.KindNotFound, "get", "product not found")
	}
	return p, nil
}

// SyncedAt is when the held list last changed; zero before the first fetch.
func (w *Workspace) SyncedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncedAt
}

type Registry struct {
	api    CatalogAPI
	mirror catalog.Mirror
	log    *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	items map[uuid.UUID]*Workspace
}

// NewRegistry returns an empty registry. mirror may be nil.
func NewRegistry(api CatalogAPI, mirror catalog.Mirror, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		api:    api,
		mirror: mirror,
		log:    log,
		now:    time.Now,
		items:  map[uuid.UUID]*Workspace{},
	}
}

// Get returns the workspace for id and marks it used.
func (r *Registry) Get(id string) (*Workspace, bool) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	w, ok := r.items[key]
	r.mu.Unlock()
	if ok {
		w.touch(r.now())
	}
	return w, ok
}

// Create registers a new workspace with its own store and form.
func (r *Registry) Create() *Workspace {
	id := uuid.New()
	log := r.log.With(zap.String("workspace", id.String()))

	var opts []catalog.StoreOption
	if r.mirror != nil {
		opts = append(opts, catalog.WithMirror(r.mirror))
	}
	store := catalog.NewStore(r.api, log, opts...)
	w := &Workspace{
		ID:       id,
		Store:    store,
		Form:     catalog.NewForm(r.api, store, log),
		api:      r.api,
		lastSeen: r.now(),
	}
	store.Subscribe(func([]models.Product) {
		w.mu.Lock()
		w.syncedAt = r.now()
		w.mu.Unlock()
	})

	r.mu.Lock()
	r.items[id] = w
	r.mu.Unlock()
	return w
}

// Sweep drops workspaces unused for longer than idle, closing their dialogs.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	var stale []*Workspace

	r.mu.Lock()
	for id, w := range r.items {
		if w.seen().Before(cutoff) {
			stale = append(stale, w)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, w := range stale {
		w.Form.Close()
	}
	if len(stale) > 0 {
		r.log.Info("swept idle workspaces", zap.Int("count", len(stale)))
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}

func (w *Workspace) touch(t time.Time) {
	w.mu.Lock()
	w.lastSeen = t
	w.mu.Unlock()
}

func (w *Workspace) seen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}
