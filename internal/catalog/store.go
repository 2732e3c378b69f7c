package catalog

import (
	"context"
	"sync"

	"catalogconsole/internal/models"

	"go.uber.org/zap"
)

// ProductSource is the part of the catalog API the store reads and deletes through.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Mirror keeps the last successfully fetched collection outside the process.
type Mirror interface {
	Replace(ctx context.Context, products []models.Product) error
	Load(ctx context.Context) ([]models.Product, error)
}

// Store holds the product collection shown by one console view.
// Only FetchAll and DeleteByID write it.
type Store struct {
	source ProductSource
	mirror Mirror
	log    *zap.Logger

	mu        sync.RWMutex
	products  []models.Product
	listeners []func([]models.Product)
}

type StoreOption func(*Store)

// WithMirror seeds an empty store from m when a fetch fails, and saves every
// successful fetch to it.
func WithMirror(m Mirror) StoreOption {
	return func(s *Store) { s.mirror = m }
}

func NewStore(source ProductSource, log *zap.Logger, opts ...StoreOption) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{source: source, log: log, products: []models.Product{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to run after each change of the collection.
func (s *Store) Subscribe(fn func([]models.Product)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// FetchAll replaces the collection with the backend's, in server order.
// On failure the held collection is kept and the error returned.
func (s *Store) FetchAll(ctx context.Context) ([]models.Product, error) {
	items, err := s.source.ListProducts(ctx)
	if err != nil {
		s.log.Error("error fetching products", zap.Error(err))
		s.seedFromMirror(ctx)
		return s.Products(), err
	}

	s.replace(items)
	if s.mirror != nil {
		if err := s.mirror.Replace(ctx, items); err != nil {
			s.log.Warn("saving catalog snapshot", zap.Error(err))
		}
	}
	return s.Products(), nil
}

// DeleteByID deletes id on the backend and, once confirmed, drops it locally.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if err := s.source.DeleteProduct(ctx, id); err != nil {
		s.log.Error("error deleting product", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	kept := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.mu.Unlock()

	s.notify()
	return nil
}

// Products returns a copy of the held collection.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Lookup returns the held product with id.
func (s *Store) Lookup(id int64) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Store) replace(items []models.Product) {
	held := make([]models.Product, len(items))
	copy(held, items)

	s.mu.Lock()
	s.products = held
	s.mu.Unlock()

	s.notify()
}

// seedFromMirror only fills an empty store; stale data never overwrites newer data.
func (s *Store) seedFromMirror(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	s.mu.RLock()
	empty := len(s.products) == 0
	s.mu.RUnlock()
	if !empty {
		return
	}

	items, err := s.mirror.Load(ctx)
	if err != nil {
		s.log.Warn("loading catalog snapshot", zap.Error(err))
		return
	}
	if len(items) > 0 {
		s.log.Info("serving catalog snapshot", zap.Int("products", len(items)))
		s.replace(items)
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	listeners := append([]func([]models.Product){}, s.listeners...)
	s.mu.RUnlock()

	items := s.Products()
	for _, fn := range listeners {
		fn(items)
	}
}
