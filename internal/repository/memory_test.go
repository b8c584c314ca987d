package repository

import (
	"sync"
	"testing"

	"spotted-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreInsertAndGet(t *testing.T) {
	store := NewMemoryStore()

	s := &models.Spotted{State: models.StatePending, Message: "oi", Suggestion: "hm", Confidence: 0.4, Origin: "page"}
	require.NoError(t, store.Insert(s))
	require.NotZero(t, s.ID)

	got, err := store.Get(models.StatePending, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "oi", got.Message)

	// Wrong state looks like a missing record
	_, err = store.Get(models.StateApproved, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreMoveState(t *testing.T) {
	store := NewMemoryStore()

	s := &models.Spotted{State: models.StatePending, Message: "oi", Suggestion: "hm", Confidence: 0.4, Origin: "page", ByAPI: false}
	require.NoError(t, store.Insert(s))

	reason := "Off-topic"
	newID, err := store.MoveState(models.StatePending, s.ID, models.StateRejected, MoveExtra{Origin: "mod1", Reason: &reason})
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, newID, "moved record must get a fresh id")

	_, err = store.Get(models.StatePending, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	moved, err := store.Get(models.StateRejected, newID)
	require.NoError(t, err)
	assert.Equal(t, "oi", moved.Message)
	assert.Equal(t, "mod1", moved.Origin)
	require.NotNil(t, moved.Reason)
	assert.Equal(t, "Off-topic", *moved.Reason)

	// Second move of the same source id fails and changes nothing
	_, err = store.MoveState(models.StatePending, s.ID, models.StateApproved, MoveExtra{Origin: "mod2"})
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := store.CountByState(models.StateRejected)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStoreMoveStateConcurrent(t *testing.T) {
	store := NewMemoryStore()

	s := &models.Spotted{State: models.StatePending, Message: "oi", Origin: "page"}
	require.NoError(t, store.Insert(s))

	const workers = 32
	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = store.MoveState(models.StatePending, s.ID, models.StateApproved, MoveExtra{Origin: "mod1"})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent mover may win")

	pending, err := store.CountByState(models.StatePending)
	require.NoError(t, err)
	approved, err := store.CountByState(models.StateApproved)
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.Equal(t, 1, approved)
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore()

	yes := true
	for _, s := range []models.Spotted{
		{State: models.StateApproved, Message: "te vi na biblioteca", Suggestion: "ok", ByAPI: true},
		{State: models.StateApproved, Message: "crush do RU", Suggestion: "ok"},
		{State: models.StatePending, Message: "te vi no RU", Suggestion: "hm"},
	} {
		spotted := s
		require.NoError(t, store.Insert(&spotted))
	}

	all, err := store.List(models.StateApproved, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byAPI, err := store.List(models.StateApproved, ListFilter{ByAPI: &yes})
	require.NoError(t, err)
	require.Len(t, byAPI, 1)
	assert.Equal(t, "te vi na biblioteca", byAPI[0].Message)

	found, err := store.List(models.StateApproved, ListFilter{Search: "biblioteca"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	ordered, err := store.List(models.StateApproved, ListFilter{OrderBy: "message", Desc: true})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, "te vi na biblioteca", ordered[0].Message)

	// Same contract as the postgres store: unknown ordering fields are
	// rejected, not silently ignored.
	_, err = store.List(models.StateApproved, ListFilter{OrderBy: "origin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ordering field")
}
