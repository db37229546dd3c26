// Package models contains data structures for the application's domain models.
package models

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the Medley application.
//
// PasswordHash may hold either a bcrypt hash or, for accounts created by the
// legacy system, a plaintext credential. See auth.VerifyPassword for how the
// two are told apart.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:60;unique;not null" json:"username"`
	Email        string    `gorm:"size:120;unique;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:10;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"created_at"`

	Media    []Media   `gorm:"foreignKey:UserID" json:"media,omitempty"`
	Comments []Comment `gorm:"foreignKey:UserID" json:"-"`
	Likes    []Like    `gorm:"foreignKey:UserID" json:"-"`
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
