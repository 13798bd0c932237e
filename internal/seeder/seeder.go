// Package seeder provisions the baseline records a fresh install needs:
// the settlement currencies and one admin account. Every step checks for
// the record first, so re-running the seeder is harmless.
package seeder

import (
	"log/slog"

	"github.com/cradoe/gopass"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/repository"
)

type Seeder struct {
	db     repository.Database
	logger *slog.Logger
}

func New(db repository.Database, logger *slog.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger,
	}
}

var defaultCurrencies = []models.Currency{
	{Name: "US Dollar", Code: "USD", Symbol: "$", RatePerDollar: 1},
	{Name: "Ugandan Shilling", Code: "UGX", Symbol: "USh", RatePerDollar: 3700},
	{Name: "Kenyan Shilling", Code: "KES", Symbol: "KSh", RatePerDollar: 129},
}

const (
	defaultAdminEmail    = "admin@remitta.local"
	defaultAdminPassword = "ChangeMe.1234"
)

func (s *Seeder) Run() error {
	err := s.seedCurrencies()
	if err != nil {
		return err
	}

	return s.seedAdmin()
}

func (s *Seeder) seedCurrencies() error {
	for _, currency := range defaultCurrencies {
		_, found, err := s.db.Currency().GetByCode(currency.Code)
		if err != nil {
			return err
		}
		if found {
			continue
		}

		_, err = s.db.Currency().Insert(&currency)
		if err != nil {
			return err
		}

		s.logger.Info("seeded currency", "code", currency.Code)
	}

	return nil
}

func (s *Seeder) seedAdmin() error {
	_, found, err := s.db.User().GetByEmail(defaultAdminEmail)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	hashedPassword, err := gopass.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}

	_, err = s.db.User().Insert(&models.User{
		FullName:       "System Administrator",
		Email:          defaultAdminEmail,
		PhoneNumber:    "+10000000000",
		Role:           models.RoleAdmin,
		HashedPassword: hashedPassword,
	}, nil)
	if err != nil {
		return err
	}

	s.logger.Warn("seeded default admin account; change the password", "email", defaultAdminEmail)

	return nil
}
