package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/kawooya/remitta/internal/models"
)

type CollectionRepository interface {
	Insert(collection *models.Collection) (*models.Collection, error)
	GetOne(id int64) (*models.Collection, bool, error)
	GetAll() ([]models.Collection, error)
	GetByStatus(status string) ([]models.Collection, error)
	GetAllByUser(userID int64) ([]models.Collection, error)
	GetByStatusAndUser(status string, userID int64) ([]models.Collection, error)
	Resolve(id, userID int64, status string) (*models.Collection, bool, error)
	Balance(userID int64, currencyID *int64) (float64, error)
	BalancesByCurrency(userID int64) ([]models.CurrencyBalance, error)
}

type CollectionRepositoryImpl struct {
	db *sqlx.DB
}

func NewCollectionRepository(db *sqlx.DB) CollectionRepository {
	return &CollectionRepositoryImpl{db: db}
}

func (repo *CollectionRepositoryImpl) Insert(collection *models.Collection) (*models.Collection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var created models.Collection

	query := `
		INSERT INTO collections (user_id, currency_id, amount)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := repo.db.GetContext(ctx, &created, query,
		collection.UserID,
		collection.CurrencyID,
		collection.Amount,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (repo *CollectionRepositoryImpl) GetOne(id int64) (*models.Collection, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var collection models.Collection

	query := `SELECT * FROM collections WHERE id = $1`

	err := repo.db.GetContext(ctx, &collection, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &collection, true, err
}

func (repo *CollectionRepositoryImpl) GetAll() ([]models.Collection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var collections []models.Collection

	query := `SELECT * FROM collections ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &collections, query)
	if err != nil {
		return nil, err
	}

	return collections, nil
}

func (repo *CollectionRepositoryImpl) GetByStatus(status string) ([]models.Collection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var collections []models.Collection

	query := `SELECT * FROM collections WHERE status = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &collections, query, status)
	if err != nil {
		return nil, err
	}

	return collections, nil
}

func (repo *CollectionRepositoryImpl) GetByStatusAndUser(status string, userID int64) ([]models.Collection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var collections []models.Collection

	query := `SELECT * FROM collections WHERE status = $1 AND user_id = $2 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &collections, query, status, userID)
	if err != nil {
		return nil, err
	}

	return collections, nil
}

func (repo *CollectionRepositoryImpl) GetAllByUser(userID int64) ([]models.Collection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var collections []models.Collection

	query := `SELECT * FROM collections WHERE user_id = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &collections, query, userID)
	if err != nil {
		return nil, err
	}

	return collections, nil
}

// Resolve flips a pending collection to confirmed or rejected as a single
// conditional update. The WHERE clause carries the ownership check and the
// pending guard, so a resolved collection can never transition again.
func (repo *CollectionRepositoryImpl) Resolve(id, userID int64, status string) (*models.Collection, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var collection models.Collection

	query := `
		UPDATE collections
		SET status = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND status = $4
		RETURNING *`

	err := repo.db.GetContext(ctx, &collection, query, status, id, userID, models.CollectionStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &collection, true, nil
}

// Balance computes confirmed collections minus completed orders for the
// member. With a nil currencyID the sums span every currency, mixing units;
// BalancesByCurrency is the unit-safe variant.
func (repo *CollectionRepositoryImpl) Balance(userID int64, currencyID *int64) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var balance float64

	if currencyID != nil {
		query := `
			SELECT
				COALESCE((SELECT SUM(amount) FROM collections
					WHERE user_id = $1 AND status = 'confirmed' AND currency_id = $2), 0)
				-
				COALESCE((SELECT SUM(amount) FROM orders
					WHERE member_id = $1 AND status = 'completed' AND from_currency_id = $2), 0)`

		err := repo.db.GetContext(ctx, &balance, query, userID, *currencyID)
		return balance, err
	}

	query := `
		SELECT
			COALESCE((SELECT SUM(amount) FROM collections
				WHERE user_id = $1 AND status = 'confirmed'), 0)
			-
			COALESCE((SELECT SUM(amount) FROM orders
				WHERE member_id = $1 AND status = 'completed'), 0)`

	err := repo.db.GetContext(ctx, &balance, query, userID)
	return balance, err
}

func (repo *CollectionRepositoryImpl) BalancesByCurrency(userID int64) ([]models.CurrencyBalance, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var balances []models.CurrencyBalance

	query := `
		SELECT
			c.id AS currency_id,
			c.name AS currency_name,
			c.code AS currency_code,
			c.symbol AS currency_symbol,
			COALESCE(col.total, 0) AS total_collected,
			COALESCE(ord.total, 0) AS total_completed,
			COALESCE(col.total, 0) - COALESCE(ord.total, 0) AS balance
		FROM currencies c
		LEFT JOIN (
			SELECT currency_id, SUM(amount) AS total
			FROM collections
			WHERE user_id = $1 AND status = 'confirmed'
			GROUP BY currency_id
		) col ON col.currency_id = c.id
		LEFT JOIN (
			SELECT from_currency_id, SUM(amount) AS total
			FROM orders
			WHERE member_id = $1 AND status = 'completed'
			GROUP BY from_currency_id
		) ord ON ord.from_currency_id = c.id
		WHERE col.total IS NOT NULL OR ord.total IS NOT NULL
		ORDER BY c.code ASC`

	err := repo.db.SelectContext(ctx, &balances, query, userID)
	if err != nil {
		return nil, err
	}

	return balances, nil
}
