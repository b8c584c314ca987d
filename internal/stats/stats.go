package stats

import (
	"fmt"

	"spotted-backend/internal/models"
	"spotted-backend/internal/repository"
)

// Snapshot holds per-state counts at roughly one instant. Counts are read
// one state at a time without a transaction; a transition landing between
// reads can skew a dashboard refresh, which is acceptable.
type Snapshot struct {
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Deleted  int `json:"deleted"`
	Pending  int `json:"pending"`
	Total    int `json:"total"`
}

// Aggregator composes read-only counts over the spotted store.
type Aggregator struct {
	store repository.SpottedStore
}

func NewAggregator(store repository.SpottedStore) *Aggregator {
	return &Aggregator{store: store}
}

// Snapshot counts every state fresh on each call. Total is always the sum
// of the four counts.
func (a *Aggregator) Snapshot() (*Snapshot, error) {
	var snap Snapshot
	for _, c := range []struct {
		state models.State
		dst   *int
	}{
		{models.StateApproved, &snap.Approved},
		{models.StateRejected, &snap.Rejected},
		{models.StateDeleted, &snap.Deleted},
		{models.StatePending, &snap.Pending},
	} {
		count, err := a.store.CountByState(c.state)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s spotteds: %w", c.state, err)
		}
		*c.dst = count
	}

	snap.Total = snap.Approved + snap.Rejected + snap.Deleted + snap.Pending
	return &snap, nil
}
