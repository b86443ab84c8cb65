package model

import (
	"time"

	"github.com/lib/pq"
)

// RuleKind tags an ApplicationRule. Each kind carries only its own
// payload: day_of_week rules have DaysOfWeek, specific_date rules have
// SpecificDates, default rules have neither.
type RuleKind string

const (
	RuleDefault      RuleKind = "default"
	RuleDayOfWeek    RuleKind = "day_of_week"
	RuleSpecificDate RuleKind = "specific_date"
)

// Specificity is the precedence tier of a matching rule. Higher wins.
type Specificity int

const (
	SpecificityNone      Specificity = -1
	SpecificityDefault   Specificity = 0
	SpecificityDayOfWeek Specificity = 1
	SpecificityDate      Specificity = 2
)

func (k RuleKind) Valid() bool {
	switch k {
	case RuleDefault, RuleDayOfWeek, RuleSpecificDate:
		return true
	}
	return false
}

func (k RuleKind) Specificity() Specificity {
	switch k {
	case RuleSpecificDate:
		return SpecificityDate
	case RuleDayOfWeek:
		return SpecificityDayOfWeek
	case RuleDefault:
		return SpecificityDefault
	}
	return SpecificityNone
}

// ApplicationRule binds a library item to the dates it is used on.
// SiteID is denormalized from the owning item so per-site lookups do
// not need a join.
type ApplicationRule struct {
	ID            int            `db:"id" json:"id"`
	SiteID        int            `db:"site_id" json:"site_id"`
	LibraryItemID int            `db:"library_item_id" json:"library_item_id"`
	Kind          RuleKind       `db:"rule_type" json:"rule_type"`
	DaysOfWeek    pq.Int64Array  `db:"days_of_week" json:"days_of_week,omitempty"`
	SpecificDates pq.StringArray `db:"specific_dates" json:"specific_dates,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

func (r ApplicationRule) Specificity() Specificity { return r.Kind.Specificity() }

// Matches reports whether the rule applies to the given local calendar
// day. isoDate is "YYYY-MM-DD", weekday is 0=Sunday..6=Saturday.
func (r ApplicationRule) Matches(isoDate string, weekday int) bool {
	switch r.Kind {
	case RuleDefault:
		return true
	case RuleDayOfWeek:
		for _, d := range r.DaysOfWeek {
			if int(d) == weekday {
				return true
			}
		}
	case RuleSpecificDate:
		for _, d := range r.SpecificDates {
			if d == isoDate {
				return true
			}
		}
	}
	return false
}
