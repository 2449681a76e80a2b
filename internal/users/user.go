// Package users reads the user accounts that own publications.
// Accounts are created and credentialed by a separate identity service; the
// credential column is never selected here.
package users

import (
	"time"

	"github.com/google/uuid"
)

// User is an account without its credential.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
