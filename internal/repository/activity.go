// Every meaningful action, synchronous or not, gets an audit row here.
// Entity and entity_id are polymorphic so one table serves the whole app.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/kawooya/remitta/internal/models"
)

type ActivityRepository interface {
	Insert(log *models.ActivityLog) (*models.ActivityLog, error)
	CountConsecutiveFailedLoginAttempts(userID int64, actionDesc string) int
}

type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

func (repo *ActivityRepositoryImpl) Insert(log *models.ActivityLog) (*models.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var created models.ActivityLog

	query := `
		INSERT INTO activity_logs (user_id, entity, entity_id, description)
		VALUES ($1, $2, $3, $4)
		RETURNING *`

	err := repo.db.GetContext(ctx, &created, query,
		log.UserID,
		log.Entity,
		log.EntityId,
		log.Description,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// CountConsecutiveFailedLoginAttempts looks at the most recent user-entity
// log rows and counts failures until a non-failure entry breaks the streak.
// Used to block the account after 3 consecutive failures.
func (repo *ActivityRepositoryImpl) CountConsecutiveFailedLoginAttempts(userID int64, actionDesc string) int {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var descriptions []string

	query := `
		SELECT description
		FROM activity_logs
		WHERE user_id = $1 AND entity = $2
		ORDER BY created_at DESC
		LIMIT 3`

	err := repo.db.SelectContext(ctx, &descriptions, query, userID, models.ActivityLogUserEntity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0
		}
		return 0
	}

	count := 0
	for _, desc := range descriptions {
		if desc == actionDesc {
			count++
		} else {
			break
		}
	}

	return count
}
