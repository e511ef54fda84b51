package service

import (
	"context"
	"sync"

	"umrahdesk/internal/domain"
	"umrahdesk/internal/models"
)

// PricingResolver looks up the per-room-type price table for a departure.
// The first successful read is cached, so every passenger in one booking
// attempt is priced from the same snapshot.
type PricingResolver struct {
	repo domain.Repository

	mu    sync.Mutex
	cache map[string]models.RoomPrices
}

func NewPricingResolver(repo domain.Repository) *PricingResolver {
	return &PricingResolver{
		repo:  repo,
		cache: make(map[string]models.RoomPrices),
	}
}

// Resolve fetches the room prices of the departure's package. Returns
// database.ErrNotFound (wrapped) when the departure or package is missing,
// which is fatal to the whole workflow.
func (r *PricingResolver) Resolve(ctx context.Context, departureID string) (models.RoomPrices, error) {
	r.mu.Lock()
	cached, ok := r.cache[departureID]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	prices, err := r.repo.GetPackagePrices(ctx, departureID)
	if err != nil {
		return models.RoomPrices{}, err
	}

	r.mu.Lock()
	r.cache[departureID] = prices
	r.mu.Unlock()
	return prices, nil
}
