package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/events"
	"github.com/sangkips/salon-api/internal/infrastructure/lock"
	infraRepo "github.com/sangkips/salon-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
)

// Locker serializes work on a key across instances
type Locker interface {
	Lock(ctx context.Context, key string) (lock.Release, error)
}

// EventPublisher fans out state changes to live subscribers
type EventPublisher interface {
	Publish(branchID uuid.UUID, eventType events.EventType, data interface{})
}

// Clock returns the current time
type Clock func() time.Time

func requireBranch(ctx context.Context) (uuid.UUID, error) {
	branchID, ok := infraRepo.GetBranchID(ctx)
	if !ok {
		return uuid.Nil, apperror.NewBadRequestError("Branch context required")
	}
	return branchID, nil
}

func billLockKey(billID uuid.UUID) string {
	return "bill:" + billID.String()
}
