package triage

import (
	"context"
	"errors"
	"testing"

	"spotted-backend/internal/classifier"
	"spotted-backend/internal/models"
	"spotted-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	verdict *classifier.Verdict
	err     error
}

func (f *fakeGateway) Classify(ctx context.Context, message string) (*classifier.Verdict, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}

type recordingNotifier struct {
	notified []*models.Spotted
}

func (n *recordingNotifier) NotifyPending(ctx context.Context, s *models.Spotted) {
	n.notified = append(n.notified, s)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		publish       bool
		confidence    float64
		hasAttachment bool
		want          models.Action
	}{
		{"publish high confidence", true, 0.95, false, models.ActionApprove},
		{"publish just above threshold", true, 0.71, false, models.ActionApprove},
		{"publish at threshold stays held", true, 0.70, false, models.ActionModeration},
		{"publish low confidence", true, 0.50, false, models.ActionModeration},
		{"no-publish low confidence", false, 0.10, false, models.ActionReject},
		{"no-publish at threshold stays held", false, 0.30, false, models.ActionModeration},
		{"no-publish high confidence", false, 0.90, false, models.ActionModeration},
		{"publish zero confidence", true, 0.0, false, models.ActionModeration},
		{"no-publish zero confidence", false, 0.0, false, models.ActionReject},
		{"attachment blocks auto-approve", true, 0.95, true, models.ActionModeration},
		{"attachment does not affect reject", false, 0.10, true, models.ActionReject},
		{"attachment does not affect held", true, 0.50, true, models.ActionModeration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &classifier.Verdict{Publish: tt.publish, Confidence: tt.confidence}
			assert.Equal(t, tt.want, Evaluate(v, tt.hasAttachment))
		})
	}
}

func TestDisplaySuggestion(t *testing.T) {
	assert.Equal(t, "ok", DisplaySuggestion(&classifier.Verdict{Publish: true, Suggestion: "ok"}))
	assert.Equal(t, "Rejeitar - spam", DisplaySuggestion(&classifier.Verdict{Publish: false, Suggestion: "spam"}))
}

func newTestService(gw classifier.Gateway, notifier Notifier) (*Service, repository.SpottedStore) {
	store := repository.NewMemoryStore()
	return NewService(gw, store, notifier, zap.NewNop()), store
}

func TestProcessApprove(t *testing.T) {
	gw := &fakeGateway{verdict: &classifier.Verdict{Publish: true, Suggestion: "ok", Confidence: 0.95}}
	svc, store := newTestService(gw, nil)

	result, err := svc.Process(context.Background(), Input{Message: "hello", IsSafe: true, Origin: "page"})
	require.NoError(t, err)

	assert.Equal(t, models.ActionApprove, result.Action)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, "ok", result.Suggestion)

	saved, err := store.Get(models.StateApproved, result.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", saved.Message)
	assert.True(t, saved.ByAPI)
	assert.True(t, saved.IsSafe)
	assert.Equal(t, "page", saved.Origin)
	assert.Nil(t, saved.Reason)
}

func TestProcessReject(t *testing.T) {
	gw := &fakeGateway{verdict: &classifier.Verdict{Publish: false, Suggestion: "spam", Confidence: 0.10}}
	svc, store := newTestService(gw, nil)

	result, err := svc.Process(context.Background(), Input{Message: "bad", IsSafe: false, Origin: "page"})
	require.NoError(t, err)

	assert.Equal(t, models.ActionReject, result.Action)
	assert.Equal(t, "Rejeitar - spam", result.Suggestion)

	saved, err := store.Get(models.StateRejected, result.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.Reason)
	assert.Equal(t, "spam", *saved.Reason)
	assert.True(t, saved.ByAPI)
}

func TestProcessModeration(t *testing.T) {
	gw := &fakeGateway{verdict: &classifier.Verdict{Publish: true, Suggestion: "borderline", Confidence: 0.50}}
	notifier := &recordingNotifier{}
	svc, store := newTestService(gw, notifier)

	result, err := svc.Process(context.Background(), Input{Message: "maybe", IsSafe: true, Origin: "page"})
	require.NoError(t, err)

	assert.Equal(t, models.ActionModeration, result.Action)

	saved, err := store.Get(models.StatePending, result.ID)
	require.NoError(t, err)
	assert.False(t, saved.ByAPI)
	assert.Nil(t, saved.Reason)

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, result.ID, notifier.notified[0].ID)
}

func TestProcessAttachmentForcesModeration(t *testing.T) {
	gw := &fakeGateway{verdict: &classifier.Verdict{Publish: true, Suggestion: "ok", Confidence: 0.95}}
	svc, store := newTestService(gw, nil)

	result, err := svc.Process(context.Background(), Input{Message: "hello", IsSafe: true, HasAttachment: true, Origin: "page"})
	require.NoError(t, err)

	assert.Equal(t, models.ActionModeration, result.Action)

	saved, err := store.Get(models.StatePending, result.ID)
	require.NoError(t, err)
	assert.True(t, saved.HasAttachment)

	count, err := store.CountByState(models.StateApproved)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProcessClassifierFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection refused")}
	svc, store := newTestService(gw, nil)

	_, err := svc.Process(context.Background(), Input{Message: "hello", IsSafe: true, Origin: "page"})
	require.ErrorIs(t, err, ErrClassifierUnavailable)

	// Nothing may be persisted on classification failure
	for _, state := range []models.State{models.StatePending, models.StateApproved, models.StateRejected, models.StateDeleted} {
		count, err := store.CountByState(state)
		require.NoError(t, err)
		assert.Zero(t, count)
	}
}

func TestProcessDryRun(t *testing.T) {
	gw := &fakeGateway{verdict: &classifier.Verdict{Publish: true, Suggestion: "ok", Confidence: 0.95}}
	notifier := &recordingNotifier{}
	svc, store := newTestService(gw, notifier)

	result, err := svc.Process(context.Background(), Input{Message: "hello", IsSafe: true, Origin: "localhost", DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, models.ActionApprove, result.Action)
	assert.Equal(t, int64(DryRunID), result.ID)

	count, err := store.CountByState(models.StateApproved)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, notifier.notified)
}
