package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/kawooya/remitta/internal/models"
)

type UserRepository interface {
	Insert(user *models.User, tx *sqlx.Tx) (int64, error)
	GetOne(id int64) (*models.User, bool, error)
	GetByEmail(email string) (*models.User, bool, error)
	GetAll() ([]models.User, error)
	GetAllByRole(role string) ([]models.User, error)
	CheckIfPhoneNumberExist(phoneNumber string) (bool, error)
	UpdateProfile(id int64, fullName, address, phoneNumber string) error
	UpdatePassword(id int64, hashedPassword string) error
	ChangeProfilePicture(id int64, url string) error
	SetStatus(id int64, status string) error
}

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Insert(user *models.User, tx *sqlx.Tx) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id int64
	query := `
		INSERT INTO users (full_name, email, phone_number, address, role, hashed_password)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if tx != nil {
		err := tx.QueryRowContext(ctx, query,
			user.FullName,
			user.Email,
			user.PhoneNumber,
			user.Address,
			user.Role,
			user.HashedPassword,
		).Scan(&id)
		if err != nil {
			return 0, err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			user.FullName,
			user.Email,
			user.PhoneNumber,
			user.Address,
			user.Role,
			user.HashedPassword,
		)
		if err != nil {
			return 0, err
		}
	}

	return id, nil
}

func (repo *UserRepositoryImpl) GetOne(id int64) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE id = $1`

	err := repo.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetByEmail(email string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE email = $1`

	err := repo.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetAll() ([]models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var users []models.User

	query := `SELECT * FROM users ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (repo *UserRepositoryImpl) GetAllByRole(role string) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var users []models.User

	query := `SELECT * FROM users WHERE role = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &users, query, role)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (repo *UserRepositoryImpl) CheckIfPhoneNumberExist(phoneNumber string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = $1)`

	err := repo.db.GetContext(ctx, &exists, query, phoneNumber)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (repo *UserRepositoryImpl) UpdateProfile(id int64, fullName, address, phoneNumber string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET full_name = $1, address = $2, phone_number = $3, updated_at = now() WHERE id = $4`

	_, err := repo.db.ExecContext(ctx, query, fullName, address, phoneNumber, id)
	return err
}

func (repo *UserRepositoryImpl) UpdatePassword(id int64, hashedPassword string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET hashed_password = $1, updated_at = now() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, hashedPassword, id)
	return err
}

func (repo *UserRepositoryImpl) ChangeProfilePicture(id int64, url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET profile_picture = $1, updated_at = now() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, url, id)
	return err
}

func (repo *UserRepositoryImpl) SetStatus(id int64, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET status = $1, updated_at = now() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, status, id)
	return err
}
