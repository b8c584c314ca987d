package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"spotted-backend/internal/models"
)

// memoryStore is an in-process SpottedStore backing the service tests. It
// honors the same contract as the postgres store: MoveState is atomic and
// at-most-once per (state, id).
type memoryStore struct {
	mu       sync.Mutex
	nextID   int64
	spotteds map[int64]*models.Spotted
}

func NewMemoryStore() SpottedStore {
	return &memoryStore{
		nextID:   1,
		spotteds: make(map[int64]*models.Spotted),
	}
}

func (m *memoryStore) Insert(s *models.Spotted) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = time.Now()

	stored := *s
	m.spotteds[s.ID] = &stored
	return nil
}

func (m *memoryStore) Get(state models.State, id int64) (*models.Spotted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.spotteds[id]
	if !ok || s.State != state {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memoryStore) MoveState(from models.State, id int64, to models.State, extra MoveExtra) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.spotteds[id]
	if !ok || src.State != from {
		return 0, ErrNotFound
	}
	delete(m.spotteds, id)

	moved := &models.Spotted{
		ID:            m.nextID,
		State:         to,
		Message:       src.Message,
		IsSafe:        src.IsSafe,
		HasAttachment: src.HasAttachment,
		Suggestion:    src.Suggestion,
		Confidence:    src.Confidence,
		Origin:        extra.Origin,
		ByAPI:         src.ByAPI,
		Reason:        extra.Reason,
		DeletedBy:     extra.DeletedBy,
		CreatedAt:     time.Now(),
	}
	m.nextID++
	m.spotteds[moved.ID] = moved
	return moved.ID, nil
}

func (m *memoryStore) CountByState(state models.State) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, s := range m.spotteds {
		if s.State == state {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) List(state models.State, filter ListFilter) ([]*models.Spotted, error) {
	if filter.OrderBy != "" && !orderColumns[filter.OrderBy] {
		return nil, fmt.Errorf("invalid ordering field: %s", filter.OrderBy)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*models.Spotted
	search := strings.ToLower(filter.Search)
	for _, s := range m.spotteds {
		if s.State != state {
			continue
		}
		if filter.ByAPI != nil && s.ByAPI != *filter.ByAPI {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Message), search) &&
			!strings.Contains(strings.ToLower(s.Suggestion), search) {
			continue
		}
		copied := *s
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		less := memoryLess(result[i], result[j], filter.OrderBy)
		if filter.Desc {
			return !less
		}
		return less
	})
	return result, nil
}

func memoryLess(a, b *models.Spotted, orderBy string) bool {
	switch orderBy {
	case "message":
		return a.Message < b.Message
	case "suggestion":
		return a.Suggestion < b.Suggestion
	case "by_api":
		return !a.ByAPI && b.ByAPI
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt)
	case "reason":
		return derefOr(a.Reason) < derefOr(b.Reason)
	default:
		return a.ID < b.ID
	}
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
