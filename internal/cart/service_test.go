package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora/storefront/internal/domain"
)

// mockRepository keeps the same (product_id, size) keyed semantics as the
// Mongo implementation: additive merge on AddLine, no non-positive lines.
type mockRepository struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockRepository) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockRepository) AddLine(_ context.Context, userID string, line domain.CartLine) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		m.cart = &domain.Cart{UserID: userID, CreatedAt: time.Now()}
	}
	for i := range m.cart.Lines {
		if m.cart.Lines[i].ProductID == line.ProductID && m.cart.Lines[i].Size == line.Size {
			m.cart.Lines[i].Quantity += line.Quantity
			return nil
		}
	}
	m.cart.Lines = append(m.cart.Lines, line)
	return nil
}

func (m *mockRepository) SetLineQuantity(_ context.Context, _ string, productID, size string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return ErrLineNotFound
	}
	for i := range m.cart.Lines {
		if m.cart.Lines[i].ProductID == productID && m.cart.Lines[i].Size == size {
			m.cart.Lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineNotFound
}

func (m *mockRepository) RemoveLine(_ context.Context, _ string, productID, size string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return ErrCartNotFound
	}
	for i, line := range m.cart.Lines {
		if line.ProductID == productID && line.Size == size {
			m.cart.Lines = append(m.cart.Lines[:i], m.cart.Lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRepository) DeleteCart(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return ErrCartNotFound
	}
	m.cart = nil
	return nil
}

func (m *mockRepository) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

func TestGetCart_Success(t *testing.T) {
	cart := &domain.Cart{
		Lines: []domain.CartLine{
			{ProductID: "p1", Size: "M", Quantity: 5},
			{ProductID: "p2", Size: "L", Quantity: 10},
		},
		UserID:    "123",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	mockRepo := &mockRepository{cart: cart}
	mockC := &mockCache{cart: nil}

	sut := NewService(mockRepo, mockC)
	ret, err := sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	assert.NotNil(t, ret)
	require.Len(t, ret.Lines, 2)
	assert.Equal(t, "p1", ret.Lines[0].ProductID)
	assert.Equal(t, 5, ret.Lines[0].Quantity)
	assert.Equal(t, 15, ret.ItemCount())

	require.Eventually(t, func() bool {
		return mockC.getCart() != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not set in cache")
}

func TestGetCart_CacheHit(t *testing.T) {
	cart := &domain.Cart{
		Lines:  []domain.CartLine{{ProductID: "p1", Size: "M", Quantity: 3}},
		UserID: "123",
	}
	mockRepo := &mockRepository{cart: nil} // repo should NOT be called
	mockC := &mockCache{cart: cart}

	sut := NewService(mockRepo, mockC)
	ret, err := sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	require.Len(t, ret.Lines, 1)
	assert.Equal(t, "p1", ret.Lines[0].ProductID)
}

func TestGetCart_NotFound_ReturnsEmptyCart(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC)
	ret, err := sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	assert.NotNil(t, ret)
	assert.Equal(t, "123", ret.UserID)
	assert.Empty(t, ret.Lines)
}

func TestGetCart_RepoError(t *testing.T) {
	mockRepo := &mockRepository{err: fmt.Errorf("database error")}
	mockC := &mockCache{}

	sut := NewService(mockRepo, mockC)
	ret, err := sut.GetCart(context.Background(), "123")
	require.ErrorContains(t, err, "database error")
	assert.Nil(t, ret)
	assert.Nil(t, mockC.getCart())
}

func TestAddLine_AccumulatesQuantities(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewService(mockRepo, mockC)

	// Repeated adds for the same (product, size) key sum up.
	for _, qty := range []int{1, 2, 4} {
		require.NoError(t, sut.AddLine(context.Background(), "123", "p1", "M", qty))
	}

	cart := mockRepo.getCart()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 7, cart.Lines[0].Quantity)
}

func TestAddLine_DifferentSizesAreSeparateLines(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewService(mockRepo, mockC)

	require.NoError(t, sut.AddLine(context.Background(), "123", "P1", "M", 2))
	require.NoError(t, sut.AddLine(context.Background(), "123", "P1", "L", 1))

	cart := mockRepo.getCart()
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 1, cart.Lines[1].Quantity)
}

func TestAddLine_InvalidatesCache(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{cart: &domain.Cart{UserID: "123"}}
	sut := NewService(mockRepo, mockC)

	require.NoError(t, sut.AddLine(context.Background(), "123", "p1", "M", 1))
	assert.Nil(t, mockC.getCart())
}

func TestUpdateQuantity_SetsNewQuantity(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewService(mockRepo, mockC)

	require.NoError(t, sut.AddLine(context.Background(), "123", "p1", "M", 2))
	require.NoError(t, sut.UpdateQuantity(context.Background(), "123", "p1", "M", 9))

	cart := mockRepo.getCart()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 9, cart.Lines[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewService(mockRepo, mockC)

	require.NoError(t, sut.AddLine(context.Background(), "123", "p1", "M", 2))
	require.NoError(t, sut.UpdateQuantity(context.Background(), "123", "p1", "M", 0))

	assert.Empty(t, mockRepo.getCart().Lines)
}

func TestUpdateQuantity_NegativeRemovesLine(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewService(mockRepo, mockC)

	require.NoError(t, sut.AddLine(context.Background(), "123", "p1", "M", 2))
	require.NoError(t, sut.UpdateQuantity(context.Background(), "123", "p1", "M", -1))

	assert.Empty(t, mockRepo.getCart().Lines)
}

func TestUpdateQuantity_MissingLine(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewService(mockRepo, mockC)

	err := sut.UpdateQuantity(context.Background(), "123", "p1", "M", 3)
	require.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveLine_RemovesOnlyThatSize(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewService(mockRepo, mockC)

	require.NoError(t, sut.AddLine(context.Background(), "123", "P1", "M", 2))
	require.NoError(t, sut.AddLine(context.Background(), "123", "P1", "L", 1))
	require.NoError(t, sut.RemoveLine(context.Background(), "123", "P1", "M"))

	cart := mockRepo.getCart()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "L", cart.Lines[0].Size)
}

func TestClear_EmptiesLedger(t *testing.T) {
	mockRepo := &mockRepository{}
	mockC := &mockCache{}
	sut := NewService(mockRepo, mockC)

	require.NoError(t, sut.AddLine(context.Background(), "123", "p1", "M", 2))
	require.NoError(t, sut.AddLine(context.Background(), "123", "p2", "S", 1))
	require.NoError(t, sut.Clear(context.Background(), "123"))

	assert.Nil(t, mockRepo.getCart())

	// Clearing again is still fine.
	require.NoError(t, sut.Clear(context.Background(), "123"))
}
