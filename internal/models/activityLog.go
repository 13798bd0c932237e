package models

import (
	"time"
)

// ActivityLog is a polymorphic audit row; Entity and EntityId tie it to
// whichever table the action touched.
type ActivityLog struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Entity      string    `db:"entity"`
	EntityId    string    `db:"entity_id"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

const (
	ActivityLogUserEntity       = "user"
	ActivityLogOrderEntity      = "order"
	ActivityLogCollectionEntity = "collection"
	ActivityLogCurrencyEntity   = "currency"
)
