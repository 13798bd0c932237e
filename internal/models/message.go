package models

import (
	"database/sql"
	"time"
)

// Message covers both addressing modes. OrderID is the discriminator:
// set for order-scoped chat, NULL for direct user-to-user threads.
// SenderName and RecipientName are snapshots taken at write time and are
// never re-synced if a user renames later.
type Message struct {
	ID            int64          `db:"id"`
	Message       string         `db:"message"`
	OrderID       sql.NullInt64  `db:"order_id"`
	SenderID      sql.NullInt64  `db:"sender_id"`
	RecipientID   sql.NullInt64  `db:"recipient_id"`
	SenderType    string         `db:"sender_type"`
	SenderName    sql.NullString `db:"sender_name"`
	RecipientName sql.NullString `db:"recipient_name"`
	IsRead        bool           `db:"is_read"`
	CreatedAt     time.Time      `db:"created_at"`
}

const (
	MessageSenderTypeUser   = "USER"
	MessageSenderTypeAdmin  = "ADMIN"
	MessageSenderTypeSystem = "SYSTEM"
)

var MessageSenderTypes = []string{
	MessageSenderTypeUser,
	MessageSenderTypeAdmin,
	MessageSenderTypeSystem,
}
