package models

import (
	"database/sql"
	"time"
)

type Order struct {
	ID                 int64         `db:"id"`
	UserID             int64         `db:"user_id"`
	MemberID           sql.NullInt64 `db:"member_id"`
	Amount             float64       `db:"amount"`
	FromCurrencyID     int64         `db:"from_currency_id"`
	ReceiverCurrencyID int64         `db:"receiver_currency_id"`
	ReceiverPlace      string        `db:"receiver_place"`
	SenderName         string        `db:"sender_name"`
	SenderPhone        string        `db:"sender_phone"`
	SenderAddress      string        `db:"sender_address"`
	Relationship       string        `db:"relationship"`
	ReceiverName       string        `db:"receiver_name"`
	ReceiverPhone      string        `db:"receiver_phone"`
	ReceiverAddress    string        `db:"receiver_address"`
	Bank               string        `db:"bank"`
	Status             string        `db:"status"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          sql.NullTime  `db:"updated_at"`
}

// Order lifecycle. Every order starts out pending; completed is terminal
// and guarded at the database level.
const (
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusCancelled = "cancelled"
	OrderStatusCompleted = "completed"
)

// OrderStatuses is the closed set accepted by the status-change operation.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusCancelled,
	OrderStatusCompleted,
}
