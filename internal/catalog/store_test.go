package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora/storefront/internal/domain"
)

type mockLister struct {
	products []domain.Product
	err      error
	calls    int
}

func (m *mockLister) ListProducts(context.Context) ([]domain.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func TestReload_ReplacesSnapshot(t *testing.T) {
	lister := &mockLister{
		products: []domain.Product{
			{ID: "p1", Name: "Hoodie", Price: 4500},
			{ID: "p2", Name: "Tee", Price: 1500},
		},
	}
	sut := NewStore(lister)

	require.NoError(t, sut.Reload(context.Background()))
	assert.Equal(t, 2, sut.Len())

	p, ok := sut.Lookup("p1")
	require.True(t, ok)
	assert.Equal(t, "Hoodie", p.Name)
	assert.Equal(t, float64(4500), p.Price)

	// Second reload drops p2 entirely, no incremental merge.
	lister.products = []domain.Product{{ID: "p1", Name: "Hoodie", Price: 4900}}
	require.NoError(t, sut.Reload(context.Background()))
	assert.Equal(t, 1, sut.Len())

	p, ok = sut.Lookup("p1")
	require.True(t, ok)
	assert.Equal(t, float64(4900), p.Price)

	_, ok = sut.Lookup("p2")
	assert.False(t, ok)
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	lister := &mockLister{
		products: []domain.Product{{ID: "p1", Name: "Hoodie", Price: 4500}},
	}
	sut := NewStore(lister)
	require.NoError(t, sut.Reload(context.Background()))

	lister.err = fmt.Errorf("connection refused")
	err := sut.Reload(context.Background())
	require.ErrorContains(t, err, "connection refused")

	// Stale snapshot survives for display continuity.
	p, ok := sut.Lookup("p1")
	require.True(t, ok)
	assert.Equal(t, "Hoodie", p.Name)
	assert.Equal(t, 1, sut.Len())
}

func TestLookup_MissingProduct(t *testing.T) {
	sut := NewStore(&mockLister{})
	_, ok := sut.Lookup("nope")
	assert.False(t, ok)
}

func TestList_PreservesSourceOrder(t *testing.T) {
	lister := &mockLister{
		products: []domain.Product{
			{ID: "a1"}, {ID: "b2"}, {ID: "c3"},
		},
	}
	sut := NewStore(lister)
	require.NoError(t, sut.Reload(context.Background()))

	listed := sut.List()
	require.Len(t, listed, 3)
	assert.Equal(t, "a1", listed[0].ID)
	assert.Equal(t, "b2", listed[1].ID)
	assert.Equal(t, "c3", listed[2].ID)
}
