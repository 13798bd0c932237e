package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID             int64          `db:"id"`
	FullName       string         `db:"full_name"`
	Email          string         `db:"email"`
	PhoneNumber    string         `db:"phone_number"`
	Address        sql.NullString `db:"address"`
	Role           string         `db:"role"`
	Status         string         `db:"status"`
	ProfilePicture sql.NullString `db:"profile_picture"`
	HashedPassword string         `db:"hashed_password"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

const (
	// RoleUser is the default role. Plain users can place transfer orders
	// and chat with the admins handling them.
	RoleUser = "user"

	// RoleMember marks field agents. Members get assigned to orders,
	// collect float and distribute payouts.
	RoleMember = "member"

	// RoleAdmin marks back-office staff with full access.
	RoleAdmin = "admin"
)

const (
	UserStatusActive = "active"

	// UserStatusBlocked indicates the account can no longer authenticate.
	// Used after repeated failed logins or by admin action.
	UserStatusBlocked = "blocked"
)

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsMember() bool {
	return u.Role == RoleMember
}
