package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/events"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// ChairService tracks which bill holds which chair
type ChairService struct {
	chairRepo repository.ChairRepository
	billRepo  repository.BillRepository
	tx        repository.Transactor
	locker    Locker
	publisher EventPublisher
	logger    logrus.FieldLogger
}

// NewChairService creates a new chair service
func NewChairService(
	chairRepo repository.ChairRepository,
	billRepo repository.BillRepository,
	tx repository.Transactor,
	locker Locker,
	publisher EventPublisher,
	log logrus.FieldLogger,
) *ChairService {
	return &ChairService{
		chairRepo: chairRepo,
		billRepo:  billRepo,
		tx:        tx,
		locker:    locker,
		publisher: publisher,
		logger:    log,
	}
}

// CreateChair adds a chair to the current branch
func (s *ChairService) CreateChair(ctx context.Context, chairNumber string) (*entity.Chair, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}
	chairNumber = strings.TrimSpace(chairNumber)
	if chairNumber == "" {
		return nil, apperror.NewFieldError("chair_number", "Chair number is required")
	}

	chair := &entity.Chair{
		BranchID:    branchID,
		ChairNumber: chairNumber,
		Status:      enum.ChairStatusAvailable,
	}
	if err := s.chairRepo.Create(ctx, chair); err != nil {
		return nil, err
	}
	s.publisher.Publish(branchID, events.EventChairUpdated, chair)
	return chair, nil
}

// ListChairs returns the chair board of the current branch
func (s *ChairService) ListChairs(ctx context.Context, status *enum.ChairStatus) ([]entity.Chair, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}
	return s.chairRepo.ListByBranch(ctx, branchID, status)
}

// AssignChair seats an open bill on an available chair. A bill that already
// holds another chair is moved.
func (s *ChairService) AssignChair(ctx context.Context, chairID, billID uuid.UUID) (*entity.Chair, error) {
	release, err := s.locker.Lock(ctx, billLockKey(billID))
	if err != nil {
		return nil, err
	}
	defer release()

	var previous *uuid.UUID
	var chair *entity.Chair
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if bill.Status.IsTerminal() {
			return apperror.NewConflictError(fmt.Sprintf("Bill %s is %s and cannot take a chair", bill.BillNo, bill.Status))
		}

		c, err := s.chairRepo.GetByID(ctx, chairID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperror.NewNotFoundError("Chair")
		}
		if c.IsHeldBy(bill.ID) {
			chair = c
			return nil
		}

		if bill.ChairID != nil {
			if _, err := s.chairRepo.ReleaseHeldBy(ctx, *bill.ChairID, bill.ID); err != nil {
				return err
			}
			previous = bill.ChairID
		}

		ok, err := s.chairRepo.Occupy(ctx, c.ID, bill.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewChairUnavailableError(c.ChairNumber)
		}

		version := bill.Version
		bill.ChairID = &c.ID
		if err := s.billRepo.UpdateWithVersion(ctx, bill, version); err != nil {
			return err
		}

		chair, err = s.chairRepo.GetByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chair_id": chair.ID,
		"bill_id":  billID,
		"moved":    previous != nil,
	}).Info("Chair assigned")

	if previous != nil {
		s.publishChair(ctx, chair.BranchID, *previous)
	}
	s.publisher.Publish(chair.BranchID, events.EventChairUpdated, chair)
	return chair, nil
}

// ReleaseChair frees a chair without touching the status of the bill it
// served. The result is always an available chair.
func (s *ChairService) ReleaseChair(ctx context.Context, chairID uuid.UUID) (*entity.Chair, error) {
	var heldBy *uuid.UUID
	var chair *entity.Chair
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.chairRepo.GetByID(ctx, chairID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperror.NewNotFoundError("Chair")
		}

		switch {
		case c.Status == enum.ChairStatusAvailable:
			chair = c
			return nil
		case c.Status == enum.ChairStatusOccupied && c.CurrentBillID != nil:
			heldBy = c.CurrentBillID
			ok, err := s.chairRepo.ReleaseHeldBy(ctx, c.ID, *c.CurrentBillID)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.ErrStaleState
			}
			if err := s.detachBill(ctx, *heldBy, c.ID); err != nil {
				return err
			}
		default:
			version := c.Version
			c.Status = enum.ChairStatusAvailable
			c.CurrentBillID = nil
			if err := s.chairRepo.UpdateWithVersion(ctx, c, version); err != nil {
				return err
			}
		}

		chair, err = s.chairRepo.GetByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chair_id": chair.ID,
		"bill_id":  heldBy,
	}).Info("Chair released")

	s.publisher.Publish(chair.BranchID, events.EventChairUpdated, chair)
	return chair, nil
}

// SetChairStatus applies an administrative move among available,
// maintenance and inactive
func (s *ChairService) SetChairStatus(ctx context.Context, chairID uuid.UUID, status enum.ChairStatus) (*entity.Chair, error) {
	if !status.Valid() {
		return nil, apperror.NewFieldError("status", "Unknown chair status")
	}
	if status == enum.ChairStatusOccupied {
		return nil, apperror.NewFieldError("status", "Chairs are occupied by assigning a bill")
	}

	var chair *entity.Chair
	changed := false
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.chairRepo.GetByID(ctx, chairID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperror.NewNotFoundError("Chair")
		}
		chair = c
		if c.Status == status {
			return nil
		}
		if c.Status == enum.ChairStatusOccupied {
			return apperror.NewConflictError(fmt.Sprintf("Chair %s is occupied, release it first", c.ChairNumber))
		}
		if !c.Status.CanAdminTransitionTo(status) {
			return apperror.NewConflictError(fmt.Sprintf("Chair %s cannot move from %s to %s", c.ChairNumber, c.Status, status))
		}

		version := c.Version
		c.Status = status
		if err := s.chairRepo.UpdateWithVersion(ctx, c, version); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return chair, nil
	}

	s.logger.WithFields(logrus.Fields{
		"chair_id": chair.ID,
		"status":   status.String(),
	}).Info("Chair status changed")

	s.publisher.Publish(chair.BranchID, events.EventChairUpdated, chair)
	return chair, nil
}

// detachBill clears the chair reference on the bill that held it
func (s *ChairService) detachBill(ctx context.Context, billID, chairID uuid.UUID) error {
	bill, err := s.billRepo.GetByIDForUpdate(ctx, billID)
	if err != nil {
		return err
	}
	if bill == nil || bill.ChairID == nil || *bill.ChairID != chairID {
		return nil
	}
	version := bill.Version
	bill.ChairID = nil
	return s.billRepo.UpdateWithVersion(ctx, bill, version)
}

func (s *ChairService) publishChair(ctx context.Context, branchID, chairID uuid.UUID) {
	chair, err := s.chairRepo.GetByID(ctx, chairID)
	if err != nil || chair == nil {
		return
	}
	s.publisher.Publish(branchID, events.EventChairUpdated, chair)
}
