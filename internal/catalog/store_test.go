package catalog

import (
	"context"
	"errors"
	"testing"

	"catalogconsole/internal/errs"
	"catalogconsole/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: 3, Name: "Phone", Category: models.CategorySmartphones},
		{ID: 7, Name: "Laptop", Category: models.CategoryLaptops},
		{ID: 1, Name: "Charger", Category: models.CategoryChargers},
	}
}

func ids(items []models.Product) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestFetchAllKeepsServerOrder(t *testing.T) {
	api := &fakeAPI{products: sampleProducts()}
	s := NewStore(api, nil)

	items, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7, 1}, ids(items))
	assert.Equal(t, []int64{3, 7, 1}, ids(s.Products()))
}

func TestFetchAllFailureKeepsCollection(t *testing.T) {
	api := &fakeAPI{products: sampleProducts()}
	s := NewStore(api, nil)
	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)

	api.listErr = &errs.Error{Kind: errs.KindTransport, Op: "list"}
	items, err := s.FetchAll(context.Background())
	assert.True(t, errs.Is(err, errs.KindTransport))
	assert.Equal(t, []int64{3, 7, 1}, ids(items))
}

func TestDeleteByIDRemovesOnlyThatID(t *testing.T) {
	api := &fakeAPI{products: sampleProducts()}
	s := NewStore(api, nil)
	_, _ = s.FetchAll(context.Background())

	require.NoError(t, s.DeleteByID(context.Background(), 7))
	assert.Equal(t, []int64{3, 1}, ids(s.Products()))
	assert.Equal(t, []int64{7}, api.deleted)
	assert.Equal(t, 1, api.listCalls, "delete filters locally instead of re-fetching")
}

func TestDeleteByIDFailureLeavesCollection(t *testing.T) {
	api := &fakeAPI{products: sampleProducts()}
	s := NewStore(api, nil)
	_, _ = s.FetchAll(context.Background())

	api.deleteErr = &errs.Error{Kind: errs.KindTransport, Op: "delete"}
	err := s.DeleteByID(context.Background(), 7)
	require.Error(t, err)

	_, ok := s.Lookup(7)
	assert.True(t, ok)
	assert.Equal(t, []int64{3, 7, 1}, ids(s.Products()))
}

func TestSubscribeSeesEveryChange(t *testing.T) {
	api := &fakeAPI{products: sampleProducts()}
	s := NewStore(api, nil)

	var seen [][]int64
	s.Subscribe(func(items []models.Product) { seen = append(seen, ids(items)) })

	_, _ = s.FetchAll(context.Background())
	_ = s.DeleteByID(context.Background(), 3)
	api.deleteErr = errors.New("boom")
	_ = s.DeleteByID(context.Background(), 1)

	assert.Equal(t, [][]int64{{3, 7, 1}, {7, 1}}, seen)
}

func TestProductsReturnsCopy(t *testing.T) {
	s := NewStore(&fakeAPI{products: sampleProducts()}, nil)
	_, _ = s.FetchAll(context.Background())

	items := s.Products()
	items[0].Name = "mutated"
	p, _ := s.Lookup(3)
	assert.Equal(t, "Phone", p.Name)
}

func TestMirrorSavesAndSeeds(t *testing.T) {
	mirror := &memMirror{}
	api := &fakeAPI{products: sampleProducts()}

	warm := NewStore(api, nil, WithMirror(mirror))
	_, err := warm.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7, 1}, ids(mirror.saved))

	api.listErr = errors.New("backend down")
	cold := NewStore(api, nil, WithMirror(mirror))
	items, err := cold.FetchAll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []int64{3, 7, 1}, ids(items))
}

func TestMirrorDoesNotOverwriteHeldData(t *testing.T) {
	mirror := &memMirror{saved: []models.Product{{ID: 99}}}
	api := &fakeAPI{products: sampleProducts()}
	s := NewStore(api, nil, WithMirror(mirror))
	_, _ = s.FetchAll(context.Background())

	mirror.saved = []models.Product{{ID: 99}}
	api.listErr = errors.New("backend down")
	items, _ := s.FetchAll(context.Background())
	assert.Equal(t, []int64{3, 7, 1}, ids(items))
}
