package moderation

import (
	"sync"
	"testing"

	"spotted-backend/internal/models"
	"spotted-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, repository.SpottedStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewService(store, zap.NewNop()), store
}

func insertSpotted(t *testing.T, store repository.SpottedStore, state models.State) int64 {
	t.Helper()
	s := &models.Spotted{
		State:      state,
		Message:    "oi",
		IsSafe:     true,
		Suggestion: "borderline",
		Confidence: 0.5,
		Origin:     "page",
	}
	require.NoError(t, store.Insert(s))
	return s.ID
}

func TestApprove(t *testing.T) {
	svc, store := newTestService(t)
	id := insertSpotted(t, store, models.StatePending)

	newID, err := svc.Approve(id, "mod1")
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)

	// The pending record is gone
	_, err = store.Get(models.StatePending, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	saved, err := store.Get(models.StateApproved, newID)
	require.NoError(t, err)
	assert.Equal(t, "oi", saved.Message)
	assert.Equal(t, "mod1", saved.Origin)
	assert.Nil(t, saved.Reason)

	// Approving again must fail: the id already left pending
	_, err = svc.Approve(id, "mod1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReject(t *testing.T) {
	svc, store := newTestService(t)
	id := insertSpotted(t, store, models.StatePending)

	newID, err := svc.Reject(id, "Spam / Propaganda", "mod1")
	require.NoError(t, err)

	saved, err := store.Get(models.StateRejected, newID)
	require.NoError(t, err)
	require.NotNil(t, saved.Reason)
	assert.Equal(t, "Spam / Propaganda", *saved.Reason)
	assert.Equal(t, "mod1", saved.Origin)
}

func TestRejectEmptyReason(t *testing.T) {
	svc, store := newTestService(t)
	id := insertSpotted(t, store, models.StatePending)

	_, err := svc.Reject(id, "", "mod1")
	assert.ErrorIs(t, err, ErrEmptyReason)

	// The pending record is untouched
	_, err = store.Get(models.StatePending, id)
	assert.NoError(t, err)
}

func TestSoftDelete(t *testing.T) {
	svc, store := newTestService(t)
	id := insertSpotted(t, store, models.StateApproved)

	newID, err := svc.SoftDelete(id, "Me arrependi", "author42", "mod2")
	require.NoError(t, err)

	saved, err := store.Get(models.StateDeleted, newID)
	require.NoError(t, err)
	require.NotNil(t, saved.Reason)
	assert.Equal(t, "Me arrependi", *saved.Reason)
	require.NotNil(t, saved.DeletedBy)
	assert.Equal(t, "author42", *saved.DeletedBy)
	assert.Equal(t, "mod2", saved.Origin)

	_, err = store.Get(models.StateApproved, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSoftDeleteEmptyReason(t *testing.T) {
	svc, store := newTestService(t)
	id := insertSpotted(t, store, models.StateApproved)

	_, err := svc.SoftDelete(id, "", "author42", "mod2")
	assert.ErrorIs(t, err, ErrEmptyReason)

	_, err = store.Get(models.StateApproved, id)
	assert.NoError(t, err)
}

func TestWrongSourceStateIsNotFound(t *testing.T) {
	svc, store := newTestService(t)
	approvedID := insertSpotted(t, store, models.StateApproved)
	pendingID := insertSpotted(t, store, models.StatePending)

	// Approve only acts on pending, SoftDelete only on approved
	_, err := svc.Approve(approvedID, "mod1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.SoftDelete(pendingID, "reason", "author", "mod1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Approve(12345, "mod1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConcurrentApproveExactlyOnce(t *testing.T) {
	svc, store := newTestService(t)
	id := insertSpotted(t, store, models.StatePending)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(id, "mod1")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, repository.ErrNotFound)
		}
	}
	assert.Equal(t, 1, successes)

	count, err := store.CountByState(models.StateApproved)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
