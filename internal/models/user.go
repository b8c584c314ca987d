package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User roles. RoleSpottedPage is the trusted automated caller (the page
// frontend submitting on behalf of anonymous users); RoleModerator is a
// human reviewer with read access to the stats dashboard.
const (
	RoleAdmin       = "admin"
	RoleSpottedPage = "spotted_page"
	RoleModerator   = "moderator"
)

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// CanModerate reports whether the role may create spotteds and apply
// moderation actions: administrators and the trusted spotted page.
func CanModerate(role string) bool {
	return role == RoleAdmin || role == RoleSpottedPage
}

// CanViewStats reports whether the role may read the stats dashboard.
func CanViewStats(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}
