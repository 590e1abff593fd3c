package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
)

type idempotencyRepository struct {
	s *Store
}

// NewIdempotencyRepository creates an idempotency repository on the store.
// Keys live outside transaction snapshots.
func NewIdempotencyRepository(s *Store) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{s: s}
}

func idemKey(key string, userID uuid.UUID, endpoint string) string {
	return userID.String() + "|" + endpoint + "|" + key
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID, endpoint string) (*entity.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ikey, ok := r.s.idempotency[idemKey(key, userID, endpoint)]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := idemKey(ikey.Key, ikey.UserID, ikey.Endpoint)
	if _, exists := r.s.idempotency[k]; exists {
		return nil
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = time.Now()
	}
	r.s.idempotency[k] = *ikey
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for k, ikey := range r.s.idempotency {
		if ikey.IsExpired(now) {
			delete(r.s.idempotency, k)
			n++
		}
	}
	return n, nil
}
