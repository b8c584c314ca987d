package models

import "time"

// State is the lifecycle state of a spotted. A spotted is in exactly one
// state at a time; moving it to another state creates a fresh record and
// removes the old one.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateDeleted  State = "deleted"
)

// ValidState reports whether s is one of the four lifecycle states.
func ValidState(s State) bool {
	switch s {
	case StatePending, StateApproved, StateRejected, StateDeleted:
		return true
	}
	return false
}

// Action is the triage decision for a new spotted.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionModeration Action = "moderation"
)

// Spotted represents a row in the 'spotteds' table.
type Spotted struct {
	ID            int64     `db:"id" json:"id"`
	State         State     `db:"state" json:"state"`
	Message       string    `db:"message" json:"message"`
	IsSafe        bool      `db:"is_safe" json:"is_safe"`
	HasAttachment bool      `db:"has_attachment" json:"has_attachment"`
	Suggestion    string    `db:"suggestion" json:"suggestion"`
	Confidence    float64   `db:"confidence" json:"confidence"`
	Origin        string    `db:"origin" json:"origin"`
	ByAPI         bool      `db:"by_api" json:"by_api"`
	Reason        *string   `db:"reason" json:"reason,omitempty"`         // Only for rejected/deleted
	DeletedBy     *string   `db:"deleted_by" json:"deleted_by,omitempty"` // Only for deleted
	CreatedAt     time.Time `db:"created_at" json:"created"`
}
