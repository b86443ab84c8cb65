package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/model"
)

func (s *pgStore) CreateCompany(name string) (model.Company, error) {
	var c model.Company
	const q = `
	INSERT INTO companies (name, created_at, updated_at)
	VALUES ($1, now(), now())
	RETURNING id, name, created_at, updated_at;`
	if err := s.db.Get(&c, q, name); err != nil {
		log.Error().Err(err).Msg("CreateCompany failed")
		return model.Company{}, translate(err, "company", 0)
	}
	return c, nil
}

func (s *pgStore) GetCompany(id int) (*model.Company, error) {
	var c model.Company
	const q = `SELECT id, name, created_at, updated_at FROM companies WHERE id = $1;`
	if err := s.db.Get(&c, q, id); err != nil {
		return nil, translate(err, "company", id)
	}
	return &c, nil
}

func (s *pgStore) ListCompanies() ([]model.Company, error) {
	var out []model.Company
	const q = `SELECT id, name, created_at, updated_at FROM companies ORDER BY id;`
	if err := s.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListCompanies failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateCompany(id int, name string) (*model.Company, error) {
	var c model.Company
	const q = `
	UPDATE companies
	   SET name = $2, updated_at = now()
	 WHERE id = $1
	RETURNING id, name, created_at, updated_at;`
	if err := s.db.Get(&c, q, id, name); err != nil {
		return nil, translate(err, "company", id)
	}
	return &c, nil
}

func (s *pgStore) DeleteCompany(id int) error {
	res, err := s.db.Exec(`DELETE FROM companies WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("company_id", id).Msg("DeleteCompany failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return translateMissing("company", id)
	}
	return nil
}

func (s *pgStore) CreateSite(companyID int, name string, location *string, timezone string) (model.Site, error) {
	var site model.Site
	const q = `
	INSERT INTO sites (company_id, name, location, timezone, created_at, updated_at)
	VALUES ($1, $2, $3, $4, now(), now())
	RETURNING id, company_id, name, location, timezone, created_at, updated_at;`
	if err := s.db.Get(&site, q, companyID, name, location, timezone); err != nil {
		log.Error().Err(err).Int("company_id", companyID).Msg("CreateSite failed")
		return model.Site{}, translate(err, "site", 0)
	}
	return site, nil
}

func (s *pgStore) GetSite(id int) (*model.Site, error) {
	var site model.Site
	const q = `
	SELECT id, company_id, name, location, timezone, created_at, updated_at
	  FROM sites
	 WHERE id = $1;`
	if err := s.db.Get(&site, q, id); err != nil {
		return nil, translate(err, "site", id)
	}
	return &site, nil
}

func (s *pgStore) ListSites(companyID int) ([]model.Site, error) {
	var out []model.Site
	const q = `
	SELECT id, company_id, name, location, timezone, created_at, updated_at
	  FROM sites
	 WHERE company_id = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, companyID); err != nil {
		log.Error().Err(err).Int("company_id", companyID).Msg("ListSites failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateSite(id int, name *string, location *string, timezone *string) (*model.Site, error) {
	var site model.Site
	const q = `
	UPDATE sites
	   SET name     = COALESCE($2, name),
	       location = COALESCE($3, location),
	       timezone = COALESCE($4, timezone),
	       updated_at = now()
	 WHERE id = $1
	RETURNING id, company_id, name, location, timezone, created_at, updated_at;`
	if err := s.db.Get(&site, q, id, name, location, timezone); err != nil {
		return nil, translate(err, "site", id)
	}
	return &site, nil
}

func (s *pgStore) DeleteSite(id int) error {
	res, err := s.db.Exec(`DELETE FROM sites WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("site_id", id).Msg("DeleteSite failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return translateMissing("site", id)
	}
	return nil
}
