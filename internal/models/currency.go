package models

import (
	"database/sql"
	"time"
)

// Currency holds a stored exchange rate against the US dollar.
// RatePerDollar is units of this currency per 1 USD and is the fallback
// used by the conversion service when the live feed is unavailable.
type Currency struct {
	ID            int64        `db:"id" json:"id"`
	Name          string       `db:"name" json:"name"`
	Code          string       `db:"code" json:"code"`
	Symbol        string       `db:"symbol" json:"symbol"`
	RatePerDollar float64      `db:"rate_per_dollar" json:"rate_per_dollar"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     sql.NullTime `db:"updated_at" json:"-"`
}
