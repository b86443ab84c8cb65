package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/model"
)

func (s *pgStore) LibraryItemByID(id int) (*model.LibraryItem, error) {
	var item model.LibraryItem
	const q = `
	SELECT id, site_id, name, description, created_at, updated_at
	  FROM library_items
	 WHERE id = $1;`
	if err := s.db.Get(&item, q, id); err != nil {
		return nil, translate(err, "library item", id)
	}
	return &item, nil
}

func (s *pgStore) ListLibraryItems(siteID int) ([]model.LibraryItem, error) {
	var out []model.LibraryItem
	const q = `
	SELECT id, site_id, name, description, created_at, updated_at
	  FROM library_items
	 WHERE site_id = $1
	 ORDER BY id;`
	if err := s.db.Select(&out, q, siteID); err != nil {
		log.Error().Err(err).Int("site_id", siteID).Msg("ListLibraryItems failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) CreateLibraryItem(siteID int, name string, description *string) (model.LibraryItem, error) {
	var item model.LibraryItem
	const q = `
	INSERT INTO library_items (site_id, name, description, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id, site_id, name, description, created_at, updated_at;`
	if err := s.db.Get(&item, q, siteID, name, description); err != nil {
		log.Error().Err(err).Int("site_id", siteID).Msg("CreateLibraryItem failed")
		return model.LibraryItem{}, translate(err, "library item", 0)
	}
	return item, nil
}

func (s *pgStore) UpdateLibraryItem(id int, name *string, description *string) (*model.LibraryItem, error) {
	var item model.LibraryItem
	const q = `
	UPDATE library_items
	   SET name        = COALESCE($2, name),
	       description = COALESCE($3, description),
	       updated_at  = now()
	 WHERE id = $1
	RETURNING id, site_id, name, description, created_at, updated_at;`
	if err := s.db.Get(&item, q, id, name, description); err != nil {
		return nil, translate(err, "library item", id)
	}
	return &item, nil
}

// DeleteLibraryItem relies on ON DELETE CASCADE to take the item's
// commands and application rules with it in one statement.
func (s *pgStore) DeleteLibraryItem(id int) error {
	res, err := s.db.Exec(`DELETE FROM library_items WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("item_id", id).Msg("DeleteLibraryItem failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return translateMissing("library item", id)
	}
	return nil
}

func (s *pgStore) ListCommands(itemID int) ([]model.Command, error) {
	var out []model.Command
	const q = `
	SELECT id, library_item_id, execution_offset_seconds, command_type
	  FROM commands
	 WHERE library_item_id = $1
	 ORDER BY execution_offset_seconds;`
	if err := s.db.Select(&out, q, itemID); err != nil {
		log.Error().Err(err).Int("item_id", itemID).Msg("ListCommands failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) AddCommand(itemID, offsetSeconds int, kind model.CommandType) (model.Command, error) {
	var cmd model.Command
	const q = `
	INSERT INTO commands (library_item_id, execution_offset_seconds, command_type)
	VALUES ($1, $2, $3)
	RETURNING id, library_item_id, execution_offset_seconds, command_type;`
	if err := s.db.Get(&cmd, q, itemID, offsetSeconds, kind); err != nil {
		log.Error().Err(err).Int("item_id", itemID).Msg("AddCommand failed")
		return model.Command{}, translate(err, "command", 0)
	}
	return cmd, nil
}

func (s *pgStore) UpdateCommand(itemID, commandID int, offsetSeconds *int, kind *model.CommandType) (*model.Command, error) {
	var cmd model.Command
	const q = `
	UPDATE commands
	   SET execution_offset_seconds = COALESCE($3, execution_offset_seconds),
	       command_type             = COALESCE($4, command_type)
	 WHERE id = $2 AND library_item_id = $1
	RETURNING id, library_item_id, execution_offset_seconds, command_type;`
	if err := s.db.Get(&cmd, q, itemID, commandID, offsetSeconds, kind); err != nil {
		return nil, translate(err, "command", commandID)
	}
	return &cmd, nil
}

func (s *pgStore) DeleteCommand(itemID, commandID int) error {
	res, err := s.db.Exec(`DELETE FROM commands WHERE id = $2 AND library_item_id = $1;`, itemID, commandID)
	if err != nil {
		log.Error().Err(err).Int("command_id", commandID).Msg("DeleteCommand failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return translateMissing("command", commandID)
	}
	return nil
}
