package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/velora/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service is the cart ledger. Every mutation goes to the repository first,
// then invalidates the cache best-effort; a failed invalidation is logged and
// not rolled back.
type Service struct {
	repo  Repository
	cache Cache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) { // not found cart return empty cart
			return &domain.Cart{
				UserID:    userID,
				Lines:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet // err from repo is not cache miss, return it
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), userID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return cart, nil // cart was not in cache, return it from repo
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddLine merges additively on the (productID, size) key.
func (s *Service) AddLine(ctx context.Context, userID, productID, size string, quantity int) error {
	errAdd := s.repo.AddLine(ctx, userID, domain.CartLine{
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	})
	if errAdd != nil {
		log.Printf("repo add line error: %v \n", errAdd)
		return errAdd
	}

	s.invalidateCache(userID)
	return nil
}

// UpdateQuantity replaces the quantity for the (productID, size) key.
// A quantity <= 0 removes the line instead of storing a non-positive value.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) error {
	if quantity <= 0 {
		errRemove := s.repo.RemoveLine(ctx, userID, productID, size)
		if errRemove != nil && !errors.Is(errRemove, ErrCartNotFound) {
			log.Printf("repo remove line error: %v \n", errRemove)
			return errRemove
		}
		s.invalidateCache(userID)
		return nil
	}

	errUpdate := s.repo.SetLineQuantity(ctx, userID, productID, size, quantity)
	if errUpdate != nil {
		log.Printf("repo set line quantity error: %v \n", errUpdate)
		return errUpdate
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) RemoveLine(ctx context.Context, userID, productID, size string) error {
	errRemove := s.repo.RemoveLine(ctx, userID, productID, size)
	if errRemove != nil {
		log.Printf("repo remove line error: %v \n", errRemove)
		return errRemove
	}

	s.invalidateCache(userID)
	return nil
}

// Clear empties the ledger unconditionally; clearing an absent cart succeeds.
func (s *Service) Clear(ctx context.Context, userID string) error {
	errDelete := s.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, ErrCartNotFound) {
		log.Printf("repo delete cart error: %v \n", errDelete)
		return errDelete
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, userID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v \n", errInvalidate)
	}
}
