package catalog

import (
	"context"
	"io"
	"sync"

	"catalogconsole/internal/models"
)

// fakeAPI stands in for the catalog backend.
type fakeAPI struct {
	mu sync.Mutex

	products  []models.Product
	listErr   error
	deleteErr error
	writeErr  error
	uploadURI string
	uploadErr error

	// uploadGate, when set, blocks UploadImage until it is closed or ctx ends.
	uploadGate chan struct{}
	uploadSeen chan struct{}
	// createGate, when set, holds CreateProduct until closed, as a backend
	// that finishes the write regardless of the caller giving up.
	createGate chan struct{}
	createSeen chan struct{}

	listCalls int
	deleted   []int64
	created   []models.Draft
	updated   []updateCall
	calls     []string
}

type updateCall struct {
	id    int64
	patch models.Patch
}

func (f *fakeAPI) ListProducts(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, d models.Draft) error {
	if f.createSeen != nil {
		close(f.createSeen)
	}
	if f.createGate != nil {
		<-f.createGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create")
	if f.writeErr != nil {
		return f.writeErr
	}
	f.created = append(f.created, d)
	return nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id int64, p models.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update")
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updated = append(f.updated, updateCall{id: id, patch: p})
	return nil
}

func (f *fakeAPI) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	if f.uploadSeen != nil {
		close(f.uploadSeen)
	}
	if f.uploadGate != nil {
		select {
		case <-f.uploadGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "upload")
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadURI, nil
}

type memMirror struct {
	saved   []models.Product
	loadErr error
}

func (m *memMirror) Replace(ctx context.Context, products []models.Product) error {
	m.saved = append([]models.Product{}, products...)
	return nil
}

func (m *memMirror) Load(ctx context.Context) ([]models.Product, error) {
	return m.saved, m.loadErr
}
