package models

import (
	"strings"
	"time"
)

// User is the locally persisted marketplace account. Credentials and token
// issuance live in the external auth service; this table only carries the
// profile data chat payloads need.
type User struct {
	ID        int       `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	IsSeller  bool      `db:"is_seller" json:"is_seller"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u User) DisplayName() string {
	return DisplayName(u.FirstName, u.LastName, u.Username)
}

// DisplayName builds "first last" from the given parts, falling back to
// username when both name parts are empty.
func DisplayName(firstName, lastName, username string) string {
	full := strings.TrimSpace(firstName + " " + lastName)
	if full == "" {
		return username
	}
	return full
}
