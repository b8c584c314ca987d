package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"spotted-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a spotted does not exist in the requested
// state. A spotted that was already moved out of its source state is
// indistinguishable from one that never existed; this is what makes every
// transition apply at most once.
var ErrNotFound = errors.New("spotted not found")

// MoveExtra carries the fields written at a state transition. Origin is the
// acting user; Reason and DeletedBy are only set when moving into rejected
// or deleted.
type MoveExtra struct {
	Origin    string
	Reason    *string
	DeletedBy *string
}

// ListFilter narrows and orders the admin listing views.
type ListFilter struct {
	ByAPI   *bool
	Search  string // Substring match on message and suggestion
	OrderBy string // One of: id, message, by_api, created_at, suggestion, reason
	Desc    bool
}

// SpottedStore is the durable repository of spotteds, keyed by (state, id).
//
// MoveState removes the record from its source state and inserts a fresh
// record in the destination state, copying the content fields and applying
// extra. Both steps happen atomically: concurrent calls for the same
// (from, id) pair yield exactly one success, the loser gets ErrNotFound.
type SpottedStore interface {
	Insert(s *models.Spotted) error
	Get(state models.State, id int64) (*models.Spotted, error)
	MoveState(from models.State, id int64, to models.State, extra MoveExtra) (int64, error)
	CountByState(state models.State) (int, error)
	List(state models.State, filter ListFilter) ([]*models.Spotted, error)
}

type spottedStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSpottedStore(db *sqlx.DB, logger *zap.Logger) SpottedStore {
	return &spottedStore{db: db, logger: logger}
}

const spottedColumns = `id, state, message, is_safe, has_attachment, suggestion, confidence, origin, by_api, reason, deleted_by, created_at`

func (r *spottedStore) Insert(s *models.Spotted) error {
	query := `INSERT INTO spotteds (state, message, is_safe, has_attachment, suggestion, confidence, origin, by_api, reason, deleted_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at`
	return r.db.QueryRowx(query, s.State, s.Message, s.IsSafe, s.HasAttachment, s.Suggestion,
		s.Confidence, s.Origin, s.ByAPI, s.Reason, s.DeletedBy).Scan(&s.ID, &s.CreatedAt)
}

func (r *spottedStore) Get(state models.State, id int64) (*models.Spotted, error) {
	var s models.Spotted
	query := `SELECT ` + spottedColumns + ` FROM spotteds WHERE id = $1 AND state = $2`
	err := r.db.Get(&s, query, id, state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// MoveState runs delete-from-source and insert-into-destination in one
// transaction. The DELETE ... RETURNING takes the row lock, so of two
// concurrent movers one deletes the row and the other matches nothing.
func (r *spottedStore) MoveState(from models.State, id int64, to models.State, extra MoveExtra) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var src models.Spotted
	query := `DELETE FROM spotteds WHERE id = $1 AND state = $2 RETURNING ` + spottedColumns
	err = tx.Get(&src, query, id, from)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to remove spotted from %s: %w", from, err)
	}

	var newID int64
	query = `INSERT INTO spotteds (state, message, is_safe, has_attachment, suggestion, confidence, origin, by_api, reason, deleted_by)
	         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err = tx.Get(&newID, query, to, src.Message, src.IsSafe, src.HasAttachment, src.Suggestion,
		src.Confidence, extra.Origin, src.ByAPI, extra.Reason, extra.DeletedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to insert spotted into %s: %w", to, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit state move: %w", err)
	}

	r.logger.Info("Spotted moved",
		zap.Int64("old_id", id),
		zap.Int64("new_id", newID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return newID, nil
}

func (r *spottedStore) CountByState(state models.State) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM spotteds WHERE state = $1`, state)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// orderColumns whitelists the sortable columns of the admin listing views.
var orderColumns = map[string]bool{
	"id":         true,
	"message":    true,
	"by_api":     true,
	"created_at": true,
	"suggestion": true,
	"reason":     true,
}

func (r *spottedStore) List(state models.State, filter ListFilter) ([]*models.Spotted, error) {
	query := `SELECT ` + spottedColumns + ` FROM spotteds WHERE state = $1`
	args := []interface{}{state}

	if filter.ByAPI != nil {
		args = append(args, *filter.ByAPI)
		query += fmt.Sprintf(" AND by_api = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (message ILIKE $%d OR suggestion ILIKE $%d)", len(args), len(args))
	}

	orderBy := "id"
	if filter.OrderBy != "" {
		if !orderColumns[filter.OrderBy] {
			return nil, fmt.Errorf("invalid ordering field: %s", filter.OrderBy)
		}
		orderBy = filter.OrderBy
	}
	query += " ORDER BY " + orderBy
	if filter.Desc {
		query += " DESC"
	}

	var spotteds []*models.Spotted
	if err := r.db.Select(&spotteds, query, args...); err != nil {
		return nil, err
	}
	return spotteds, nil
}
