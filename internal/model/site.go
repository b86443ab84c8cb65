package model

import "time"

// Company is the top-level tenant; every site belongs to exactly one.
type Company struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Site represents an installation (battery + controller) that schedules
// are resolved against.
type Site struct {
	ID        int       `db:"id" json:"id"`
	CompanyID int       `db:"company_id" json:"company_id"`
	Name      string    `db:"name" json:"name"`
	Location  *string   `db:"location" json:"location"`
	Timezone  string    `db:"timezone" json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
