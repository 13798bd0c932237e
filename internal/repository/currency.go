package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/kawooya/remitta/internal/models"
	"github.com/lib/pq"
)

// ErrCurrencyInUse is returned when deleting a currency that orders or
// collections still reference.
var ErrCurrencyInUse = errors.New("currency is referenced by existing records")

type CurrencyRepository interface {
	Insert(currency *models.Currency) (*models.Currency, error)
	GetOne(id int64) (*models.Currency, bool, error)
	GetByCode(code string) (*models.Currency, bool, error)
	GetAll() ([]models.Currency, error)
	Update(currency *models.Currency) (bool, error)
	Delete(id int64) (bool, error)
}

type CurrencyRepositoryImpl struct {
	db *sqlx.DB
}

func NewCurrencyRepository(db *sqlx.DB) CurrencyRepository {
	return &CurrencyRepositoryImpl{db: db}
}

func (repo *CurrencyRepositoryImpl) Insert(currency *models.Currency) (*models.Currency, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var created models.Currency

	query := `
		INSERT INTO currencies (name, code, symbol, rate_per_dollar)
		VALUES ($1, $2, $3, $4)
		RETURNING *`

	err := repo.db.GetContext(ctx, &created, query,
		currency.Name,
		currency.Code,
		currency.Symbol,
		currency.RatePerDollar,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (repo *CurrencyRepositoryImpl) GetOne(id int64) (*models.Currency, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var currency models.Currency

	query := `SELECT * FROM currencies WHERE id = $1`

	err := repo.db.GetContext(ctx, &currency, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &currency, true, err
}

func (repo *CurrencyRepositoryImpl) GetByCode(code string) (*models.Currency, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var currency models.Currency

	query := `SELECT * FROM currencies WHERE code = $1`

	err := repo.db.GetContext(ctx, &currency, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &currency, true, err
}

func (repo *CurrencyRepositoryImpl) GetAll() ([]models.Currency, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var currencies []models.Currency

	query := `SELECT * FROM currencies ORDER BY code ASC`

	err := repo.db.SelectContext(ctx, &currencies, query)
	if err != nil {
		return nil, err
	}

	return currencies, nil
}

func (repo *CurrencyRepositoryImpl) Update(currency *models.Currency) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE currencies
		SET name = $1, code = $2, symbol = $3, rate_per_dollar = $4, updated_at = now()
		WHERE id = $5`

	result, err := repo.db.ExecContext(ctx, query,
		currency.Name,
		currency.Code,
		currency.Symbol,
		currency.RatePerDollar,
		currency.ID,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (repo *CurrencyRepositoryImpl) Delete(id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `DELETE FROM currencies WHERE id = $1`

	result, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		var pqErr *pq.Error
		// foreign_key_violation: orders or collections still reference it
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return false, ErrCurrencyInUse
		}
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
