package models

import (
	"database/sql"
	"time"
)

// Collection is a float entry: cash credited to a member in a given
// currency. It stays pending until the owning member confirms receipt
// or rejects it, each of which is terminal.
type Collection struct {
	ID         int64        `db:"id"`
	UserID     int64        `db:"user_id"`
	CurrencyID int64        `db:"currency_id"`
	Amount     float64      `db:"amount"`
	Status     string       `db:"status"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  sql.NullTime `db:"updated_at"`
}

const (
	CollectionStatusPending   = "pending"
	CollectionStatusConfirmed = "confirmed"
	CollectionStatusRejected  = "rejected"
)

// CurrencyBalance is the per-currency ledger projection for a member:
// confirmed collections minus completed orders, never persisted.
type CurrencyBalance struct {
	CurrencyID     int64   `db:"currency_id" json:"currency_id"`
	CurrencyName   string  `db:"currency_name" json:"currency_name"`
	CurrencyCode   string  `db:"currency_code" json:"currency_code"`
	CurrencySymbol string  `db:"currency_symbol" json:"currency_symbol"`
	TotalCollected float64 `db:"total_collected" json:"total_collected"`
	TotalCompleted float64 `db:"total_completed" json:"total_completed"`
	Balance        float64 `db:"balance" json:"balance"`
}
