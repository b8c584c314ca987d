package triage

import (
	"context"
	"errors"
	"fmt"

	"spotted-backend/internal/classifier"
	"spotted-backend/internal/models"
	"spotted-backend/internal/repository"

	"go.uber.org/zap"
)

// Triage thresholds. The approve and reject bands use strict inequalities,
// so confidence exactly at a boundary falls into the moderation band.
const (
	approveThreshold = 0.70
	rejectThreshold  = 0.30
)

// DryRunID is returned instead of a record id when the caller asked for an
// evaluation without persistence.
const DryRunID = -1

// ErrClassifierUnavailable wraps any classifier gateway failure. No spotted
// is created in that case; the caller must retry.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// Notifier is told about spotteds held for human moderation.
type Notifier interface {
	NotifyPending(ctx context.Context, s *models.Spotted)
}

// Input is a new spotted submission.
type Input struct {
	Message       string
	IsSafe        bool
	HasAttachment bool
	Origin        string
	// DryRun evaluates the policy without persisting anything. Used by the
	// local testing actor; the triage logic itself is identical.
	DryRun bool
}

// Result is what the API returns for a new spotted.
type Result struct {
	Confidence float64       `json:"confidence"`
	Action     models.Action `json:"action"`
	ID         int64         `json:"api_id"`
	Suggestion string        `json:"suggestion"`
}

// Evaluate maps a classifier verdict to a triage action:
//
//	approve     publish and confidence above the approve threshold
//	reject      no-publish and confidence below the reject threshold
//	moderation  everything else
//
// Spotteds with attachments are never auto-approved; an approve verdict is
// downgraded to moderation so a human sees the attachment first.
func Evaluate(v *classifier.Verdict, hasAttachment bool) models.Action {
	var action models.Action
	switch {
	case v.Publish && v.Confidence > approveThreshold:
		action = models.ActionApprove
	case !v.Publish && v.Confidence < rejectThreshold:
		action = models.ActionReject
	default:
		action = models.ActionModeration
	}

	if hasAttachment && action == models.ActionApprove {
		action = models.ActionModeration
	}
	return action
}

// DisplaySuggestion renders the suggestion shown to moderators. A reject
// recommendation is prefixed even when the final action is moderation, so
// the negative lean of the classifier stays visible.
func DisplaySuggestion(v *classifier.Verdict) string {
	if !v.Publish {
		return "Rejeitar - " + v.Suggestion
	}
	return v.Suggestion
}

// Service runs the triage policy for new spotteds and persists the outcome.
type Service struct {
	gateway  classifier.Gateway
	store    repository.SpottedStore
	notifier Notifier
	logger   *zap.Logger
}

func NewService(gateway classifier.Gateway, store repository.SpottedStore, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		gateway:  gateway,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Process classifies the message, picks the triage action and inserts the
// spotted into its initial state. Approve and reject are terminal decisions
// made by the API (by_api=true, the rejection reason is the classifier's
// suggestion); moderation holds the spotted in pending for a human.
func (s *Service) Process(ctx context.Context, in Input) (*Result, error) {
	verdict, err := s.gateway.Classify(ctx, in.Message)
	if err != nil {
		s.logger.Error("Classifier call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}

	action := Evaluate(verdict, in.HasAttachment)

	result := &Result{
		Confidence: verdict.Confidence,
		Action:     action,
		ID:         DryRunID,
		Suggestion: DisplaySuggestion(verdict),
	}

	if in.DryRun {
		s.logger.Info("Dry-run triage, skipping persistence",
			zap.String("action", string(action)),
			zap.Float64("confidence", verdict.Confidence))
		return result, nil
	}

	spotted := &models.Spotted{
		Message:       in.Message,
		IsSafe:        in.IsSafe,
		HasAttachment: in.HasAttachment,
		Suggestion:    verdict.Suggestion,
		Confidence:    verdict.Confidence,
		Origin:        in.Origin,
	}

	switch action {
	case models.ActionApprove:
		spotted.State = models.StateApproved
		spotted.ByAPI = true
	case models.ActionReject:
		spotted.State = models.StateRejected
		spotted.ByAPI = true
		reason := verdict.Suggestion
		spotted.Reason = &reason
	default:
		spotted.State = models.StatePending
	}

	if err := s.store.Insert(spotted); err != nil {
		s.logger.Error("Failed to insert spotted", zap.String("state", string(spotted.State)), zap.Error(err))
		return nil, fmt.Errorf("failed to persist spotted: %w", err)
	}
	result.ID = spotted.ID

	s.logger.Info("Spotted triaged",
		zap.Int64("id", spotted.ID),
		zap.String("action", string(action)),
		zap.Float64("confidence", verdict.Confidence),
		zap.String("origin", in.Origin))

	if action == models.ActionModeration && s.notifier != nil {
		s.notifier.NotifyPending(ctx, spotted)
	}

	return result, nil
}
