package schedule

import (
	"github.com/Voltlane-Energy/voltlane/internal/model"
)

// Store is the persistence surface the engine runs on. The Postgres
// implementation lives in internal/db; Memory in this package backs
// tests and local development.
//
// Store methods return *NotFoundError for missing rows and
// *ConflictError for unique-constraint violations so the engine never
// inspects driver errors.
type Store interface {
	// library items
	LibraryItemByID(id int) (*model.LibraryItem, error)
	ListLibraryItems(siteID int) ([]model.LibraryItem, error)
	CreateLibraryItem(siteID int, name string, description *string) (model.LibraryItem, error)
	UpdateLibraryItem(id int, name *string, description *string) (*model.LibraryItem, error)
	DeleteLibraryItem(id int) error // cascades commands and rules

	// commands
	ListCommands(itemID int) ([]model.Command, error) // ascending by offset
	AddCommand(itemID, offsetSeconds int, kind model.CommandType) (model.Command, error)
	UpdateCommand(itemID, commandID int, offsetSeconds *int, kind *model.CommandType) (*model.Command, error)
	DeleteCommand(itemID, commandID int) error

	// application rules
	RuleByID(id int) (*model.ApplicationRule, error)
	ListRulesForSite(siteID int) ([]model.ApplicationRule, error)
	ListRulesForItem(itemID int) ([]model.ApplicationRule, error)
	CreateRule(r model.ApplicationRule) (model.ApplicationRule, error)
	DeleteRule(id int) error

	// ReplaceDefaultRule atomically removes any existing default rule
	// for the site and creates one for itemID. A concurrent reader
	// never observes zero or two defaults.
	ReplaceDefaultRule(siteID, itemID int) (model.ApplicationRule, error)

	// DeleteDefaultRule removes the site's default rule if present and
	// reports whether one existed.
	DeleteDefaultRule(siteID int) (bool, error)
}
