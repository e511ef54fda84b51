package repository

import (
	"context"
	"sync/atomic"
	"time"

	"umrahdesk/internal/domain"
	"umrahdesk/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStateRepository prefers the primary (Redis) store and falls back
// to the in-memory store when the primary errors, re-probing it after a
// minute.
type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary state repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverStateRepository) shouldProbe() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverStateRepository) GetDraft(ctx context.Context, accountID string) (*models.WizardDraft, error) {
	if !r.isDown.Load() {
		draft, err := r.primary.GetDraft(ctx, accountID)
		if err == nil {
			return draft, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		draft, err := r.primary.GetDraft(ctx, accountID)
		if err == nil {
			r.isDown.Store(false)
			return draft, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetDraft(ctx, accountID)
}

func (r *FailoverStateRepository) SetDraft(ctx context.Context, draft *models.WizardDraft) error {
	if !r.isDown.Load() {
		err := r.primary.SetDraft(ctx, draft)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetDraft(ctx, draft)
}

func (r *FailoverStateRepository) ClearDraft(ctx context.Context, accountID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearDraft(ctx, accountID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.ClearDraft(ctx, accountID)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, accountID string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, accountID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, accountID, limit, window)
}
