package schedule

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/model"
	"github.com/Voltlane-Energy/voltlane/internal/timeutil"
)

// Resolved is the single effective library item for a (site, date)
// pair, together with the tier it won at.
type Resolved struct {
	Item        model.LibraryItem `json:"item"`
	Specificity model.Specificity `json:"specificity"`
	RuleID      int               `json:"rule_id"`
}

// Applicable is one matching rule in the full break-down of a date.
// Exactly one entry has IsActive set; the rest are shadowed by a more
// specific match.
type Applicable struct {
	Item        model.LibraryItem `json:"item"`
	Specificity model.Specificity `json:"specificity"`
	RuleID      int               `json:"rule_id"`
	IsActive    bool              `json:"is_active"`
}

// Cache holds resolved (site, date) results between mutations. A nil
// Cache on the Resolver disables caching. Implementations treat every
// failure as a miss.
type Cache interface {
	GetEffective(siteID int, isoDate string) (*Resolved, bool)
	SetEffective(siteID int, isoDate string, r *Resolved)
	Invalidate(siteID int)
}

// Resolver computes effective schedules. Specific-date rules beat
// day-of-week rules beat the default; within a tier the highest rule
// ID (most recently created) wins.
type Resolver struct {
	store Store
	cache Cache
}

func NewResolver(store Store, cache Cache) *Resolver {
	return &Resolver{store: store, cache: cache}
}

// Effective returns the library item in force at the site on the given
// date, or nil when no rule matches. An unknown site resolves to nil,
// not an error.
func (r *Resolver) Effective(siteID int, date time.Time) (*Resolved, error) {
	iso := timeutil.ToISODate(date)
	if r.cache != nil {
		if hit, ok := r.cache.GetEffective(siteID, iso); ok {
			return hit, nil
		}
	}

	rules, err := r.store.ListRulesForSite(siteID)
	if err != nil {
		return nil, err
	}
	winner := effectiveRule(rules, iso, timeutil.Weekday(date))
	if winner == nil {
		return nil, nil
	}

	item, err := r.store.LibraryItemByID(winner.LibraryItemID)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{Item: *item, Specificity: winner.Specificity(), RuleID: winner.ID}
	if r.cache != nil {
		r.cache.SetEffective(siteID, iso, resolved)
	}
	log.Debug().
		Int("site_id", siteID).
		Str("date", iso).
		Int("rule_id", winner.ID).
		Int("specificity", int(resolved.Specificity)).
		Msg("resolved effective schedule")
	return resolved, nil
}

// AllApplicable returns every rule matching the date across all tiers,
// ordered by specificity descending then rule ID descending, with the
// effective one flagged. Shadowed entries are what the calendar view
// renders greyed out.
func (r *Resolver) AllApplicable(siteID int, date time.Time) ([]Applicable, error) {
	iso := timeutil.ToISODate(date)
	weekday := timeutil.Weekday(date)

	rules, err := r.store.ListRulesForSite(siteID)
	if err != nil {
		return nil, err
	}

	var matched []model.ApplicationRule
	for _, rule := range rules {
		if rule.Matches(iso, weekday) {
			matched = append(matched, rule)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Specificity() != matched[j].Specificity() {
			return matched[i].Specificity() > matched[j].Specificity()
		}
		return matched[i].ID > matched[j].ID
	})

	out := make([]Applicable, 0, len(matched))
	for i, rule := range matched {
		item, err := r.store.LibraryItemByID(rule.LibraryItemID)
		if err != nil {
			return nil, err
		}
		out = append(out, Applicable{
			Item:        *item,
			Specificity: rule.Specificity(),
			RuleID:      rule.ID,
			IsActive:    i == 0,
		})
	}
	return out, nil
}

// effectiveRule walks the tiers highest-precedence first and picks the
// highest rule ID within the winning tier.
func effectiveRule(rules []model.ApplicationRule, isoDate string, weekday int) *model.ApplicationRule {
	for _, tier := range []model.RuleKind{model.RuleSpecificDate, model.RuleDayOfWeek, model.RuleDefault} {
		var winner *model.ApplicationRule
		for i := range rules {
			rule := &rules[i]
			if rule.Kind != tier || !rule.Matches(isoDate, weekday) {
				continue
			}
			if winner == nil || rule.ID > winner.ID {
				winner = rule
			}
		}
		if winner != nil {
			return winner
		}
	}
	return nil
}
