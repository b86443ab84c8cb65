package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/model"
)

const ruleColumns = `id, site_id, library_item_id, rule_type, days_of_week, specific_dates, created_at`

func (s *pgStore) RuleByID(id int) (*model.ApplicationRule, error) {
	var r model.ApplicationRule
	const q = `
	SELECT ` + ruleColumns + `
	  FROM application_rules
	 WHERE id = $1;`
	if err := s.db.Get(&r, q, id); err != nil {
		return nil, translate(err, "application rule", id)
	}
	return &r, nil
}

func (s *pgStore) ListRulesForSite(siteID int) ([]model.ApplicationRule, error) {
	var out []model.ApplicationRule
	const q = `
	SELECT ` + ruleColumns + `
	  FROM application_rules
	 WHERE site_id = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, siteID); err != nil {
		log.Error().Err(err).Int("site_id", siteID).Msg("ListRulesForSite failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) ListRulesForItem(itemID int) ([]model.ApplicationRule, error) {
	var out []model.ApplicationRule
	const q = `
	SELECT ` + ruleColumns + `
	  FROM application_rules
	 WHERE library_item_id = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, itemID); err != nil {
		log.Error().Err(err).Int("item_id", itemID).Msg("ListRulesForItem failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) CreateRule(r model.ApplicationRule) (model.ApplicationRule, error) {
	var created model.ApplicationRule
	const q = `
	INSERT INTO application_rules (site_id, library_item_id, rule_type, days_of_week, specific_dates, created_at)
	VALUES ($1, $2, $3, $4, $5, now())
	RETURNING ` + ruleColumns + `;`
	if err := s.db.Get(&created, q, r.SiteID, r.LibraryItemID, r.Kind, r.DaysOfWeek, r.SpecificDates); err != nil {
		log.Error().Err(err).Int("site_id", r.SiteID).Str("rule_type", string(r.Kind)).Msg("CreateRule failed")
		return model.ApplicationRule{}, translate(err, "application rule", 0)
	}
	return created, nil
}

func (s *pgStore) DeleteRule(id int) error {
	res, err := s.db.Exec(`DELETE FROM application_rules WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("rule_id", id).Msg("DeleteRule failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return translateMissing("application rule", id)
	}
	return nil
}

// ReplaceDefaultRule swaps the site's default inside one transaction.
// The partial unique index on (site_id) WHERE rule_type='default'
// backstops the single-default invariant against concurrent writers.
func (s *pgStore) ReplaceDefaultRule(siteID, itemID int) (model.ApplicationRule, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return model.ApplicationRule{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM application_rules WHERE site_id = $1 AND rule_type = 'default';`, siteID); err != nil {
		log.Error().Err(err).Int("site_id", siteID).Msg("ReplaceDefaultRule delete failed")
		return model.ApplicationRule{}, err
	}

	var created model.ApplicationRule
	const q = `
	INSERT INTO application_rules (site_id, library_item_id, rule_type, created_at)
	VALUES ($1, $2, 'default', now())
	RETURNING ` + ruleColumns + `;`
	if err := tx.Get(&created, q, siteID, itemID); err != nil {
		log.Error().Err(err).Int("site_id", siteID).Int("item_id", itemID).Msg("ReplaceDefaultRule insert failed")
		return model.ApplicationRule{}, translate(err, "application rule", 0)
	}

	if err := tx.Commit(); err != nil {
		return model.ApplicationRule{}, err
	}
	return created, nil
}

func (s *pgStore) DeleteDefaultRule(siteID int) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM application_rules WHERE site_id = $1 AND rule_type = 'default';`, siteID)
	if err != nil {
		log.Error().Err(err).Int("site_id", siteID).Msg("DeleteDefaultRule failed")
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
