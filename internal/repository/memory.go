package repository

import (
	"context"
	"sync"
	"time"

	"umrahdesk/internal/models"
)

// MemoryStateRepository is the in-process fallback draft store. TTL is
// checked lazily on read.
type MemoryStateRepository struct {
	drafts     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

type draftEntry struct {
	draft     *models.WizardDraft
	expiresAt time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{ttl: ttl}
}

func (r *MemoryStateRepository) GetDraft(ctx context.Context, accountID string) (*models.WizardDraft, error) {
	val, ok := r.drafts.Load(accountID)
	if !ok {
		return nil, nil
	}
	entry := val.(*draftEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.drafts.Delete(accountID)
		return nil, nil
	}
	return entry.draft, nil
}

func (r *MemoryStateRepository) SetDraft(ctx context.Context, draft *models.WizardDraft) error {
	r.drafts.Store(draft.AccountID, &draftEntry{
		draft:     draft,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryStateRepository) ClearDraft(ctx context.Context, accountID string) error {
	r.drafts.Delete(accountID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, accountID string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(accountID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(accountID, entry)
	return entry.count <= limit, nil
}
