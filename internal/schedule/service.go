package schedule

import (
	"sort"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/model"
	"github.com/Voltlane-Energy/voltlane/internal/timeutil"
)

// Notifier pushes "schedule changed" events to site controllers so
// they re-fetch their plan. A nil Notifier on the Service is a no-op.
type Notifier interface {
	ScheduleChanged(siteID int)
}

// Service is the rule mutation API. Every write validates its
// invariants first, then persists, then invalidates the site's cached
// resolutions and notifies its controllers.
type Service struct {
	store  Store
	cache  Cache
	notify Notifier
}

func NewService(store Store, cache Cache, notify Notifier) *Service {
	return &Service{store: store, cache: cache, notify: notify}
}

// ---------------------------------------------------------------------------
// library items

func (s *Service) CreateLibraryItem(siteID int, name string, description *string) (model.LibraryItem, error) {
	if name == "" {
		return model.LibraryItem{}, invalid("name", "must not be empty")
	}
	if err := s.checkNameFree(siteID, name, 0); err != nil {
		return model.LibraryItem{}, err
	}
	return s.store.CreateLibraryItem(siteID, name, description)
}

// UpdateLibraryItem renames and/or re-describes an item. Nil fields are
// left untouched.
func (s *Service) UpdateLibraryItem(itemID int, name *string, description *string) (*model.LibraryItem, error) {
	item, err := s.store.LibraryItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if *name == "" {
			return nil, invalid("name", "must not be empty")
		}
		if err := s.checkNameFree(item.SiteID, *name, itemID); err != nil {
			return nil, err
		}
	}
	updated, err := s.store.UpdateLibraryItem(itemID, name, description)
	if err != nil {
		return nil, err
	}
	// cached resolutions embed the item, so a rename must flush them
	s.changed(item.SiteID)
	return updated, nil
}

// DeleteLibraryItem removes the item together with every rule and
// command referencing it. No rule may survive its item.
func (s *Service) DeleteLibraryItem(itemID int) error {
	item, err := s.store.LibraryItemByID(itemID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteLibraryItem(itemID); err != nil {
		return err
	}
	log.Info().Int("item_id", itemID).Int("site_id", item.SiteID).Msg("library item deleted with rules cascaded")
	s.changed(item.SiteID)
	return nil
}

// checkNameFree enforces exact-match, case-sensitive name uniqueness
// within a site. excludeID skips the item being renamed.
func (s *Service) checkNameFree(siteID int, name string, excludeID int) error {
	items, err := s.store.ListLibraryItems(siteID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.Name == name && it.ID != excludeID {
			return invalid("name", "name already exists")
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// commands

func (s *Service) AddCommand(itemID, offsetSeconds int, kind model.CommandType) (model.Command, error) {
	item, err := s.store.LibraryItemByID(itemID)
	if err != nil {
		return model.Command{}, err
	}
	if err := s.validateCommand(itemID, offsetSeconds, kind); err != nil {
		return model.Command{}, err
	}
	cmd, err := s.store.AddCommand(itemID, offsetSeconds, kind)
	if err != nil {
		return model.Command{}, err
	}
	s.changed(item.SiteID)
	return cmd, nil
}

func (s *Service) UpdateCommand(itemID, commandID int, offsetSeconds *int, kind *model.CommandType) (*model.Command, error) {
	item, err := s.store.LibraryItemByID(itemID)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListCommands(itemID)
	if err != nil {
		return nil, err
	}
	var current *model.Command
	for i := range existing {
		if existing[i].ID == commandID {
			current = &existing[i]
			break
		}
	}
	if current == nil {
		return nil, notFound("command", commandID)
	}

	newOffset := current.ExecutionOffsetSeconds
	if offsetSeconds != nil {
		newOffset = *offsetSeconds
	}
	newKind := current.CommandType
	if kind != nil {
		newKind = *kind
	}
	if newOffset < 0 || newOffset >= timeutil.SecondsPerDay {
		return nil, invalid("execution_offset_seconds", "must be in [0, 86400)")
	}
	if !newKind.Valid() {
		return nil, invalid("command_type", "must be charge, discharge, or trickle_charge")
	}
	for _, c := range existing {
		if c.ID != commandID && c.ExecutionOffsetSeconds == newOffset {
			return nil, &ConflictError{Reason: "another command already runs at this time"}
		}
	}
	updated, err := s.store.UpdateCommand(itemID, commandID, offsetSeconds, kind)
	if err != nil {
		return nil, err
	}
	s.changed(item.SiteID)
	return updated, nil
}

func (s *Service) DeleteCommand(itemID, commandID int) error {
	item, err := s.store.LibraryItemByID(itemID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCommand(itemID, commandID); err != nil {
		return err
	}
	s.changed(item.SiteID)
	return nil
}

func (s *Service) validateCommand(itemID, offsetSeconds int, kind model.CommandType) error {
	if offsetSeconds < 0 || offsetSeconds >= timeutil.SecondsPerDay {
		return invalid("execution_offset_seconds", "must be in [0, 86400)")
	}
	if !kind.Valid() {
		return invalid("command_type", "must be charge, discharge, or trickle_charge")
	}
	existing, err := s.store.ListCommands(itemID)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if c.ExecutionOffsetSeconds == offsetSeconds {
			return &ConflictError{Reason: "another command already runs at this time"}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// rules

// SetDefault makes itemID the site's fallback schedule, replacing any
// existing default in one transaction. At most one default rule exists
// per site at any time.
func (s *Service) SetDefault(siteID, itemID int) (model.ApplicationRule, error) {
	item, err := s.store.LibraryItemByID(itemID)
	if err != nil {
		return model.ApplicationRule{}, err
	}
	if item.SiteID != siteID {
		return model.ApplicationRule{}, invalid("library_item_id", "item belongs to a different site")
	}
	rule, err := s.store.ReplaceDefaultRule(siteID, itemID)
	if err != nil {
		return model.ApplicationRule{}, err
	}
	log.Info().Int("site_id", siteID).Int("item_id", itemID).Int("rule_id", rule.ID).Msg("default schedule set")
	s.changed(siteID)
	return rule, nil
}

// ClearDefault removes the site's default rule. Clearing a site that
// has none is a no-op.
func (s *Service) ClearDefault(siteID int) error {
	removed, err := s.store.DeleteDefaultRule(siteID)
	if err != nil {
		return err
	}
	if removed {
		s.changed(siteID)
	}
	return nil
}

// AddDayOfWeekRule binds the item to a set of weekdays (0=Sunday).
// Each call creates an independent rule; overlapping coverage across
// items is legal and settled at resolution time.
func (s *Service) AddDayOfWeekRule(itemID int, days []int) (model.ApplicationRule, error) {
	if len(days) == 0 {
		return model.ApplicationRule{}, invalid("days_of_week", "must not be empty")
	}
	seen := make(map[int]bool, len(days))
	normalized := make(pq.Int64Array, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return model.ApplicationRule{}, invalid("days_of_week", "days must be in 0..6")
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		normalized = append(normalized, int64(d))
	}
	sort.Slice(normalized, func(i, j int) bool { return normalized[i] < normalized[j] })

	item, err := s.store.LibraryItemByID(itemID)
	if err != nil {
		return model.ApplicationRule{}, err
	}
	rule, err := s.store.CreateRule(model.ApplicationRule{
		SiteID:        item.SiteID,
		LibraryItemID: itemID,
		Kind:          model.RuleDayOfWeek,
		DaysOfWeek:    normalized,
	})
	if err != nil {
		return model.ApplicationRule{}, err
	}
	s.changed(item.SiteID)
	return rule, nil
}

// AddSpecificDate binds the item to a single calendar date.
func (s *Service) AddSpecificDate(itemID int, date time.Time) (model.ApplicationRule, error) {
	return s.AddSpecificDates(itemID, []time.Time{date})
}

// AddSpecificDates binds the item to an explicit set of dates as one
// rule. Duplicates within the set collapse; the stored set is
// ascending.
func (s *Service) AddSpecificDates(itemID int, dates []time.Time) (model.ApplicationRule, error) {
	if len(dates) == 0 {
		return model.ApplicationRule{}, invalid("specific_dates", "must not be empty")
	}
	seen := make(map[string]bool, len(dates))
	set := make(pq.StringArray, 0, len(dates))
	for _, d := range dates {
		iso := timeutil.ToISODate(d)
		if seen[iso] {
			continue
		}
		seen[iso] = true
		set = append(set, iso)
	}
	sort.Strings(set)
	return s.addDateRule(itemID, set)
}

// date ranges expand into explicit per-day date sets, so their length
// is bounded before expansion
const maxRangeDays = 366

// AddDateRange binds the item to every day in [start, end] inclusive,
// as one rule carrying the expanded date set.
func (s *Service) AddDateRange(itemID int, start, end time.Time) (model.ApplicationRule, error) {
	if timeutil.StartOfDay(end).Before(timeutil.StartOfDay(start)) {
		return model.ApplicationRule{}, invalid("end", "end date before start date")
	}
	if timeutil.DaysBetween(start, end) > maxRangeDays {
		return model.ApplicationRule{}, invalid("end", "range spans more than 366 days")
	}
	return s.addDateRule(itemID, pq.StringArray(timeutil.ExpandRange(start, end)))
}

func (s *Service) addDateRule(itemID int, dates pq.StringArray) (model.ApplicationRule, error) {
	item, err := s.store.LibraryItemByID(itemID)
	if err != nil {
		return model.ApplicationRule{}, err
	}
	rule, err := s.store.CreateRule(model.ApplicationRule{
		SiteID:        item.SiteID,
		LibraryItemID: itemID,
		Kind:          model.RuleSpecificDate,
		SpecificDates: dates,
	})
	if err != nil {
		return model.ApplicationRule{}, err
	}
	s.changed(item.SiteID)
	return rule, nil
}

// DeleteRule removes one rule. When it was the site's default, the
// site is observably without a default afterwards.
func (s *Service) DeleteRule(ruleID int) error {
	rule, err := s.store.RuleByID(ruleID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRule(ruleID); err != nil {
		return err
	}
	s.changed(rule.SiteID)
	return nil
}

// ListRulesForItem returns the item's rules ordered by ID, specific
// dates sorted ascending for display.
func (s *Service) ListRulesForItem(itemID int) ([]model.ApplicationRule, error) {
	if _, err := s.store.LibraryItemByID(itemID); err != nil {
		return nil, err
	}
	rules, err := s.store.ListRulesForItem(itemID)
	if err != nil {
		return nil, err
	}
	for i := range rules {
		sort.Strings(rules[i].SpecificDates)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

func (s *Service) changed(siteID int) {
	if s.cache != nil {
		s.cache.Invalidate(siteID)
	}
	if s.notify != nil {
		s.notify.ScheduleChanged(siteID)
	}
}
