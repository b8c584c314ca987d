package moderation

import (
	"errors"
	"fmt"

	"spotted-backend/internal/models"
	"spotted-backend/internal/repository"

	"go.uber.org/zap"
)

// ErrEmptyReason is returned when a reject or delete arrives without a
// reason. Nothing is mutated in that case.
var ErrEmptyReason = errors.New("reason must not be empty")

// Service applies moderator decisions to held spotteds. The only legal
// transitions are pending→approved, pending→rejected and approved→deleted;
// everything else surfaces as repository.ErrNotFound because the record is
// not in the required source state.
type Service struct {
	store  repository.SpottedStore
	logger *zap.Logger
}

func NewService(store repository.SpottedStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Approve publishes a pending spotted. Returns the id of the new approved
// record.
func (s *Service) Approve(pendingID int64, actor string) (int64, error) {
	newID, err := s.store.MoveState(models.StatePending, pendingID, models.StateApproved,
		repository.MoveExtra{Origin: actor})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to approve spotted %d: %w", pendingID, err)
	}

	s.logger.Info("Spotted approved by moderator",
		zap.Int64("pending_id", pendingID),
		zap.Int64("approved_id", newID),
		zap.String("actor", actor))
	return newID, nil
}

// Reject refuses a pending spotted with a non-empty reason.
func (s *Service) Reject(pendingID int64, reason, actor string) (int64, error) {
	if reason == "" {
		return 0, ErrEmptyReason
	}

	newID, err := s.store.MoveState(models.StatePending, pendingID, models.StateRejected,
		repository.MoveExtra{Origin: actor, Reason: &reason})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to reject spotted %d: %w", pendingID, err)
	}

	s.logger.Info("Spotted rejected by moderator",
		zap.Int64("pending_id", pendingID),
		zap.Int64("rejected_id", newID),
		zap.String("actor", actor),
		zap.String("reason", reason))
	return newID, nil
}

// SoftDelete takes down an already approved spotted, recording who asked
// for the removal and why.
func (s *Service) SoftDelete(approvedID int64, reason, deletedBy, actor string) (int64, error) {
	if reason == "" {
		return 0, ErrEmptyReason
	}

	newID, err := s.store.MoveState(models.StateApproved, approvedID, models.StateDeleted,
		repository.MoveExtra{Origin: actor, Reason: &reason, DeletedBy: &deletedBy})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to delete spotted %d: %w", approvedID, err)
	}

	s.logger.Info("Approved spotted deleted",
		zap.Int64("approved_id", approvedID),
		zap.Int64("deleted_id", newID),
		zap.String("actor", actor),
		zap.String("deleted_by", deletedBy),
		zap.String("reason", reason))
	return newID, nil
}
