package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Voltlane-Energy/voltlane/internal/model"
	"github.com/Voltlane-Energy/voltlane/internal/timeutil"
)

const testSite = 1

func mustDate(t *testing.T, iso string) time.Time {
	t.Helper()
	d, err := timeutil.ParseISODate(iso)
	require.NoError(t, err)
	return d
}

func newFixture(t *testing.T) (*Memory, *Service, *Resolver) {
	t.Helper()
	store := NewMemory()
	svc := NewService(store, nil, nil)
	return store, svc, NewResolver(store, nil)
}

func mustItem(t *testing.T, svc *Service, siteID int, name string) model.LibraryItem {
	t.Helper()
	item, err := svc.CreateLibraryItem(siteID, name, nil)
	require.NoError(t, err)
	return item
}

// 2025-06-18 is a Wednesday, 2025-06-17 a Tuesday.
var (
	wednesday = "2025-06-18"
	tuesday   = "2025-06-17"
)

func TestEffectiveDefaultOnly(t *testing.T) {
	_, svc, resolver := newFixture(t)
	itemA := mustItem(t, svc, testSite, "Overnight Charge")
	_, err := svc.SetDefault(testSite, itemA.ID)
	require.NoError(t, err)

	resolved, err := resolver.Effective(testSite, mustDate(t, tuesday))
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, itemA.ID, resolved.Item.ID)
	assert.Equal(t, model.SpecificityDefault, resolved.Specificity)
}

func TestEffectiveDayOfWeekBeatsDefault(t *testing.T) {
	_, svc, resolver := newFixture(t)
	itemA := mustItem(t, svc, testSite, "Overnight Charge")
	itemB := mustItem(t, svc, testSite, "Peak Shaving")
	_, err := svc.SetDefault(testSite, itemA.ID)
	require.NoError(t, err)
	_, err = svc.AddDayOfWeekRule(itemB.ID, []int{1, 3, 5}) // Mon/Wed/Fri
	require.NoError(t, err)

	// Wednesday resolves to B
	resolved, err := resolver.Effective(testSite, mustDate(t, wednesday))
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, itemB.ID, resolved.Item.ID)
	assert.Equal(t, model.SpecificityDayOfWeek, resolved.Specificity)

	// Tuesday falls through to the default
	resolved, err = resolver.Effective(testSite, mustDate(t, tuesday))
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, itemA.ID, resolved.Item.ID)
	assert.Equal(t, model.SpecificityDefault, resolved.Specificity)
}

func TestEffectiveSpecificDateBeatsAll(t *testing.T) {
	_, svc, resolver := newFixture(t)
	itemA := mustItem(t, svc, testSite, "Overnight Charge")
	itemB := mustItem(t, svc, testSite, "Peak Shaving")
	itemC := mustItem(t, svc, testSite, "Maintenance Hold")
	_, err := svc.SetDefault(testSite, itemA.ID)
	require.NoError(t, err)
	_, err = svc.AddDayOfWeekRule(itemB.ID, []int{3})
	require.NoError(t, err)

	date := mustDate(t, wednesday)
	resolved, err := resolver.Effective(testSite, date)
	require.NoError(t, err)
	assert.Equal(t, itemB.ID, resolved.Item.ID)

	// pinning the Wednesday to C overrides the day-of-week match
	_, err = svc.AddSpecificDate(itemC.ID, date)
	require.NoError(t, err)

	resolved, err = resolver.Effective(testSite, date)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, itemC.ID, resolved.Item.ID)
	assert.Equal(t, model.SpecificityDate, resolved.Specificity)

	// B still matches but is shadowed
	applicable, err := resolver.AllApplicable(testSite, date)
	require.NoError(t, err)
	require.Len(t, applicable, 3)
	assert.Equal(t, itemC.ID, applicable[0].Item.ID)
	assert.True(t, applicable[0].IsActive)
	assert.Equal(t, itemB.ID, applicable[1].Item.ID)
	assert.False(t, applicable[1].IsActive)
	assert.Equal(t, itemA.ID, applicable[2].Item.ID)
	assert.False(t, applicable[2].IsActive)
}

func TestEffectiveNoRules(t *testing.T) {
	_, _, resolver := newFixture(t)
	resolved, err := resolver.Effective(testSite, mustDate(t, wednesday))
	require.NoError(t, err)
	assert.Nil(t, resolved)

	applicable, err := resolver.AllApplicable(testSite, mustDate(t, wednesday))
	require.NoError(t, err)
	assert.Empty(t, applicable)
}

func TestEffectiveUnknownSiteIsEmptyNotError(t *testing.T) {
	_, svc, resolver := newFixture(t)
	itemA := mustItem(t, svc, testSite, "Overnight Charge")
	_, err := svc.SetDefault(testSite, itemA.ID)
	require.NoError(t, err)

	resolved, err := resolver.Effective(999, mustDate(t, wednesday))
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestTieBreakMostRecentRuleWins(t *testing.T) {
	_, svc, resolver := newFixture(t)
	itemA := mustItem(t, svc, testSite, "Overnight Charge")
	itemB := mustItem(t, svc, testSite, "Peak Shaving")
	date := mustDate(t, wednesday)

	first, err := svc.AddSpecificDate(itemA.ID, date)
	require.NoError(t, err)
	second, err := svc.AddSpecificDate(itemB.ID, date)
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	resolved, err := resolver.Effective(testSite, date)
	require.NoError(t, err)
	assert.Equal(t, itemB.ID, resolved.Item.ID)
	assert.Equal(t, second.ID, resolved.RuleID)

	// same ordering inside the tier for the full listing
	applicable, err := resolver.AllApplicable(testSite, date)
	require.NoError(t, err)
	require.Len(t, applicable, 2)
	assert.Equal(t, second.ID, applicable[0].RuleID)
	assert.True(t, applicable[0].IsActive)
	assert.Equal(t, first.ID, applicable[1].RuleID)
	assert.False(t, applicable[1].IsActive)
}

func TestTieBreakDayOfWeekTier(t *testing.T) {
	_, svc, resolver := newFixture(t)
	itemA := mustItem(t, svc, testSite, "Overnight Charge")
	itemB := mustItem(t, svc, testSite, "Peak Shaving")

	_, err := svc.AddDayOfWeekRule(itemA.ID, []int{3})
	require.NoError(t, err)
	second, err := svc.AddDayOfWeekRule(itemB.ID, []int{1, 3})
	require.NoError(t, err)

	resolved, err := resolver.Effective(testSite, mustDate(t, wednesday))
	require.NoError(t, err)
	assert.Equal(t, itemB.ID, resolved.Item.ID)
	assert.Equal(t, second.ID, resolved.RuleID)
}

func TestResolverUsesCache(t *testing.T) {
	store := NewMemory()
	cache := &countingCache{entries: make(map[string]*Resolved)}
	svc := NewService(store, cache, nil)
	resolver := NewResolver(store, cache)

	itemA := mustItem(t, svc, testSite, "Overnight Charge")
	_, err := svc.SetDefault(testSite, itemA.ID)
	require.NoError(t, err)

	date := mustDate(t, tuesday)
	_, err = resolver.Effective(testSite, date)
	require.NoError(t, err)
	_, err = resolver.Effective(testSite, date)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.misses, "second lookup should be served from cache")

	// a mutation invalidates, forcing a fresh resolution
	itemB := mustItem(t, svc, testSite, "Peak Shaving")
	_, err = svc.SetDefault(testSite, itemB.ID)
	require.NoError(t, err)

	resolved, err := resolver.Effective(testSite, date)
	require.NoError(t, err)
	assert.Equal(t, itemB.ID, resolved.Item.ID)
	assert.Equal(t, 2, cache.misses)
}

// countingCache is a map-backed Cache that counts fills.
type countingCache struct {
	entries map[string]*Resolved
	misses  int
}

func (c *countingCache) key(siteID int, iso string) string {
	return fmt.Sprintf("%d#%s", siteID, iso)
}

func (c *countingCache) GetEffective(siteID int, iso string) (*Resolved, bool) {
	r, ok := c.entries[c.key(siteID, iso)]
	return r, ok
}

func (c *countingCache) SetEffective(siteID int, iso string, r *Resolved) {
	c.misses++
	c.entries[c.key(siteID, iso)] = r
}

func (c *countingCache) Invalidate(int) {
	c.entries = make(map[string]*Resolved)
}
