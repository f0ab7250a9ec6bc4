package domain

import "github.com/google/uuid"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account of the canteen system. Students are identified in orders by email or roll number.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RollNo       string    `json:"rollNo,omitempty"`
	IsAdmin      bool      `json:"isAdmin"`
	PasswordHash string    `json:"-"`
}

// Roles returns the authorization roles of the user
func (u *User) Roles() []string {
	if u.IsAdmin {
		return []string{RoleAdmin}
	}
	return []string{RoleUser}
}
