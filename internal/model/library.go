package model

import "time"

// CommandType is the action a site controller executes at a command's
// offset from local midnight.
type CommandType string

const (
	CommandCharge        CommandType = "charge"
	CommandDischarge     CommandType = "discharge"
	CommandTrickleCharge CommandType = "trickle_charge"
)

func (t CommandType) Valid() bool {
	switch t {
	case CommandCharge, CommandDischarge, CommandTrickleCharge:
		return true
	}
	return false
}

// LibraryItem is a named, reusable daily command schedule owned by a
// site. Names are unique within a site (exact match).
type LibraryItem struct {
	ID          int       `db:"id" json:"id"`
	SiteID      int       `db:"site_id" json:"site_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Command belongs exclusively to one library item. No two commands in
// the same item share an execution offset.
type Command struct {
	ID                     int         `db:"id" json:"id"`
	LibraryItemID          int         `db:"library_item_id" json:"library_item_id"`
	ExecutionOffsetSeconds int         `db:"execution_offset_seconds" json:"execution_offset_seconds"`
	CommandType            CommandType `db:"command_type" json:"command_type"`
}
