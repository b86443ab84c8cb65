// Package db persists the scheduling domain in PostgreSQL. It exposes
// a Store interface so handlers never touch SQL directly.
package db

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Voltlane-Energy/voltlane/internal/model"
	"github.com/Voltlane-Energy/voltlane/internal/schedule"
)

// Store is everything the HTTP layer needs from persistence. The
// scheduling engine's own surface is embedded so one pgStore serves
// both.
type Store interface {
	schedule.Store

	// users
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// companies
	CreateCompany(name string) (model.Company, error)
	GetCompany(id int) (*model.Company, error)
	ListCompanies() ([]model.Company, error)
	UpdateCompany(id int, name string) (*model.Company, error)
	DeleteCompany(id int) error

	// sites
	CreateSite(companyID int, name string, location *string, timezone string) (model.Site, error)
	GetSite(id int) (*model.Site, error)
	ListSites(companyID int) ([]model.Site, error)
	UpdateSite(id int, name *string, location *string, timezone *string) (*model.Site, error)
	DeleteSite(id int) error
}

type pgStore struct {
	db *sqlx.DB
}

var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	if database == nil {
		database = DB
	}
	return &pgStore{db: database}
}

// translate maps driver errors onto the engine's taxonomy so callers
// only ever see schedule.NotFoundError / schedule.ConflictError.
func translate(err error, kind string, id int) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &schedule.NotFoundError{Kind: kind, ID: id}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &schedule.ConflictError{Reason: pqErr.Detail}
	}
	return err
}

func translateMissing(kind string, id int) error {
	return &schedule.NotFoundError{Kind: kind, ID: id}
}
