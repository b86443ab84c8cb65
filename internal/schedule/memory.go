package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/Voltlane-Energy/voltlane/internal/model"
)

// Memory is an in-memory Store for tests and local development. It
// enforces the same row-level invariants the Postgres schema does
// (name uniqueness, offset uniqueness, single default per site,
// cascades) so the engine behaves identically against either.
type Memory struct {
	mu       sync.RWMutex
	items    map[int]model.LibraryItem
	commands map[int]model.Command
	rules    map[int]model.ApplicationRule
	nextID   int
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		items:    make(map[int]model.LibraryItem),
		commands: make(map[int]model.Command),
		rules:    make(map[int]model.ApplicationRule),
	}
}

func (m *Memory) nextIDLocked() int {
	m.nextID++
	return m.nextID
}

// ---------------------------------------------------------------------------
// library items

func (m *Memory) LibraryItemByID(id int) (*model.LibraryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, notFound("library item", id)
	}
	return &item, nil
}

func (m *Memory) ListLibraryItems(siteID int) ([]model.LibraryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.LibraryItem, 0)
	for _, item := range m.items {
		if item.SiteID == siteID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateLibraryItem(siteID int, name string, description *string) (model.LibraryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.SiteID == siteID && item.Name == name {
			return model.LibraryItem{}, &ConflictError{Reason: "name already exists"}
		}
	}
	now := time.Now()
	item := model.LibraryItem{
		ID:          m.nextIDLocked(),
		SiteID:      siteID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *Memory) UpdateLibraryItem(id int, name *string, description *string) (*model.LibraryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, notFound("library item", id)
	}
	if name != nil {
		for _, other := range m.items {
			if other.ID != id && other.SiteID == item.SiteID && other.Name == *name {
				return nil, &ConflictError{Reason: "name already exists"}
			}
		}
		item.Name = *name
	}
	if description != nil {
		item.Description = description
	}
	item.UpdatedAt = time.Now()
	m.items[id] = item
	return &item, nil
}

func (m *Memory) DeleteLibraryItem(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return notFound("library item", id)
	}
	delete(m.items, id)
	for cid, c := range m.commands {
		if c.LibraryItemID == id {
			delete(m.commands, cid)
		}
	}
	for rid, r := range m.rules {
		if r.LibraryItemID == id {
			delete(m.rules, rid)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// commands

func (m *Memory) ListCommands(itemID int) ([]model.Command, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Command, 0)
	for _, c := range m.commands {
		if c.LibraryItemID == itemID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExecutionOffsetSeconds < out[j].ExecutionOffsetSeconds
	})
	return out, nil
}

func (m *Memory) AddCommand(itemID, offsetSeconds int, kind model.CommandType) (model.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[itemID]; !ok {
		return model.Command{}, notFound("library item", itemID)
	}
	for _, c := range m.commands {
		if c.LibraryItemID == itemID && c.ExecutionOffsetSeconds == offsetSeconds {
			return model.Command{}, &ConflictError{Reason: "command offset already taken"}
		}
	}
	cmd := model.Command{
		ID:                     m.nextIDLocked(),
		LibraryItemID:          itemID,
		ExecutionOffsetSeconds: offsetSeconds,
		CommandType:            kind,
	}
	m.commands[cmd.ID] = cmd
	return cmd, nil
}

func (m *Memory) UpdateCommand(itemID, commandID int, offsetSeconds *int, kind *model.CommandType) (*model.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd, ok := m.commands[commandID]
	if !ok || cmd.LibraryItemID != itemID {
		return nil, notFound("command", commandID)
	}
	if offsetSeconds != nil {
		for _, c := range m.commands {
			if c.LibraryItemID == itemID && c.ID != commandID && c.ExecutionOffsetSeconds == *offsetSeconds {
				return nil, &ConflictError{Reason: "command offset already taken"}
			}
		}
		cmd.ExecutionOffsetSeconds = *offsetSeconds
	}
	if kind != nil {
		cmd.CommandType = *kind
	}
	m.commands[commandID] = cmd
	return &cmd, nil
}

func (m *Memory) DeleteCommand(itemID, commandID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd, ok := m.commands[commandID]
	if !ok || cmd.LibraryItemID != itemID {
		return notFound("command", commandID)
	}
	delete(m.commands, commandID)
	return nil
}

// ---------------------------------------------------------------------------
// rules

func (m *Memory) RuleByID(id int) (*model.ApplicationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[id]
	if !ok {
		return nil, notFound("application rule", id)
	}
	return &rule, nil
}

func (m *Memory) ListRulesForSite(siteID int) ([]model.ApplicationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ApplicationRule, 0)
	for _, r := range m.rules {
		if r.SiteID == siteID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListRulesForItem(itemID int) ([]model.ApplicationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ApplicationRule, 0)
	for _, r := range m.rules {
		if r.LibraryItemID == itemID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateRule(r model.ApplicationRule) (model.ApplicationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[r.LibraryItemID]; !ok {
		return model.ApplicationRule{}, notFound("library item", r.LibraryItemID)
	}
	if r.Kind == model.RuleDefault {
		for _, other := range m.rules {
			if other.SiteID == r.SiteID && other.Kind == model.RuleDefault {
				return model.ApplicationRule{}, &ConflictError{Reason: "site already has a default rule"}
			}
		}
	}
	r.ID = m.nextIDLocked()
	r.CreatedAt = time.Now()
	m.rules[r.ID] = r
	return r, nil
}

func (m *Memory) DeleteRule(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return notFound("application rule", id)
	}
	delete(m.rules, id)
	return nil
}

func (m *Memory) ReplaceDefaultRule(siteID, itemID int) (model.ApplicationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[itemID]; !ok {
		return model.ApplicationRule{}, notFound("library item", itemID)
	}
	for rid, r := range m.rules {
		if r.SiteID == siteID && r.Kind == model.RuleDefault {
			delete(m.rules, rid)
		}
	}
	rule := model.ApplicationRule{
		ID:            m.nextIDLocked(),
		SiteID:        siteID,
		LibraryItemID: itemID,
		Kind:          model.RuleDefault,
		CreatedAt:     time.Now(),
	}
	m.rules[rule.ID] = rule
	return rule, nil
}

func (m *Memory) DeleteDefaultRule(siteID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := false
	for rid, r := range m.rules {
		if r.SiteID == siteID && r.Kind == model.RuleDefault {
			delete(m.rules, rid)
			removed = true
		}
	}
	return removed, nil
}
