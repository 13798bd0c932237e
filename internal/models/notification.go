package models

import (
	"database/sql"
	"time"
)

// Notification rows are always per-user; a "system" notification is fanned
// out as one row per existing user at creation time so each user keeps an
// independent read state.
type Notification struct {
	ID          int64         `db:"id" json:"id"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description"`
	UserID      sql.NullInt64 `db:"user_id" json:"-"`
	Type        string        `db:"type" json:"type"`
	IsRead      bool          `db:"is_read" json:"is_read"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

const (
	NotificationTypeSystem = "system"
	NotificationTypeUser   = "user"
)
