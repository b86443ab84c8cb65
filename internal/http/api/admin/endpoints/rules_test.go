package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Voltlane-Energy/voltlane/internal/http/api"
	"github.com/Voltlane-Energy/voltlane/internal/http/api/admin/packets"
	"github.com/Voltlane-Energy/voltlane/internal/http/middleware"
	"github.com/Voltlane-Energy/voltlane/internal/model"
	"github.com/Voltlane-Energy/voltlane/internal/schedule"
)

func newTestRouter(t *testing.T) (*gin.Engine, *schedule.Service, schedule.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := schedule.NewMemory()
	svc := schedule.NewService(store, nil, nil)
	resolver := schedule.NewResolver(store, nil)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Middleware: []gin.HandlerFunc{func(c *gin.Context) {
			middleware.SetCurrentUser(c, &model.User{ID: 1, Email: "ops@voltlane.test"})
		}},
	},
		LibraryModule(svc, store),
		RuleModule(svc, resolver, store),
	)
	return r, svc, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createItem(t *testing.T, r *gin.Engine, siteID int, name string) packets.LibraryItemResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/admin/library-items", gin.H{
		"site_id": siteID,
		"name":    name,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[packets.LibraryItemResponse](t, w)
}

func TestItemAndCommandLifecycle(t *testing.T) {
	r, _, _ := newTestRouter(t)
	item := createItem(t, r, 1, "Overnight Charge")
	assert.Equal(t, 1, item.SiteID)
	assert.Empty(t, item.Commands)

	off := 23 * 3600
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/admin/library-items/%d/commands", item.ID), gin.H{
		"execution_offset_seconds": off,
		"command_type":             "charge",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cmd := decode[packets.CommandResponse](t, w)
	assert.Equal(t, "23:00", cmd.ExecutionTime)

	// a second command at the same offset conflicts
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/admin/library-items/%d/commands", item.ID), gin.H{
		"execution_offset_seconds": off,
		"command_type":             "discharge",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// midnight is a valid offset and must survive binding's required check
	zero := 0
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/admin/library-items/%d/commands", item.ID), gin.H{
		"execution_offset_seconds": zero,
		"command_type":             "trickle_charge",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/admin/library-items/%d", item.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[packets.LibraryItemResponse](t, w)
	require.Len(t, got.Commands, 2)
	assert.Equal(t, 0, got.Commands[0].ExecutionOffsetSeconds)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/library-items/%d/commands/%d", item.ID, cmd.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateItemDuplicateName(t *testing.T) {
	r, _, _ := newTestRouter(t)
	createItem(t, r, 1, "Overnight Charge")

	w := doJSON(t, r, http.MethodPost, "/api/admin/library-items", gin.H{
		"site_id": 1,
		"name":    "Overnight Charge",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestRuleLifecycleAndResolution(t *testing.T) {
	r, _, _ := newTestRouter(t)
	itemA := createItem(t, r, 1, "Overnight Charge")
	itemB := createItem(t, r, 1, "Peak Shaving")

	// default via the site endpoint
	w := doJSON(t, r, http.MethodPut, "/api/admin/sites/1/default", gin.H{
		"library_item_id": itemA.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	def := decode[packets.RuleResponse](t, w)
	assert.Equal(t, "default", def.RuleType)

	// day-of-week via the generic rule endpoint
	w = doJSON(t, r, http.MethodPost, "/api/admin/application-rules", gin.H{
		"library_item_id": itemB.ID,
		"rule_type":       "day_of_week",
		"days_of_week":    []int{1, 3, 5},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dow := decode[packets.RuleResponse](t, w)
	assert.Equal(t, []int{1, 3, 5}, dow.DaysOfWeek)

	// 2025-06-18 is a Wednesday, so B wins
	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/schedule?date=2025-06-18", nil)
	require.Equal(t, http.StatusOK, w.Code)
	eff := decode[packets.EffectiveResponse](t, w)
	require.NotNil(t, eff.Item)
	assert.Equal(t, itemB.ID, eff.Item.ID)
	assert.Equal(t, 1, eff.Specificity)

	// Tuesday falls back to the default
	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/schedule?date=2025-06-17", nil)
	require.Equal(t, http.StatusOK, w.Code)
	eff = decode[packets.EffectiveResponse](t, w)
	require.NotNil(t, eff.Item)
	assert.Equal(t, itemA.ID, eff.Item.ID)
	assert.Equal(t, 0, eff.Specificity)

	// pin the Wednesday to A with a specific date
	w = doJSON(t, r, http.MethodPost, "/api/admin/application-rules", gin.H{
		"library_item_id": itemA.ID,
		"rule_type":       "specific_date",
		"specific_dates":  []string{"2025-06-18"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/schedule/applicable?date=2025-06-18", nil)
	require.Equal(t, http.StatusOK, w.Code)
	app := decode[packets.ApplicableResponse](t, w)
	require.Len(t, app.Entries, 3)
	assert.Equal(t, itemA.ID, app.Entries[0].Item.ID)
	assert.Equal(t, 2, app.Entries[0].Specificity)
	assert.True(t, app.Entries[0].IsActive)
	assert.False(t, app.Entries[1].IsActive)
	assert.False(t, app.Entries[2].IsActive)

	// dropping the pin restores the day-of-week winner
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/application-rules/%d", app.Entries[0].RuleID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/schedule?date=2025-06-18", nil)
	eff = decode[packets.EffectiveResponse](t, w)
	require.NotNil(t, eff.Item)
	assert.Equal(t, itemB.ID, eff.Item.ID)
}

func TestEffectiveEmptySite(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/admin/sites/7/schedule?date=2025-06-18", nil)
	require.Equal(t, http.StatusOK, w.Code)
	eff := decode[packets.EffectiveResponse](t, w)
	assert.Nil(t, eff.Item)
	assert.Equal(t, -1, eff.Specificity)
}

func TestDateRangeEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	item := createItem(t, r, 1, "Overnight Charge")

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/admin/library-items/%d/date-range", item.ID), gin.H{
		"start": "2025-01-30",
		"end":   "2025-02-02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rule := decode[packets.RuleResponse](t, w)
	assert.Equal(t, "specific_date", rule.RuleType)
	assert.Equal(t, []string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"}, rule.SpecificDates)

	// inverted range
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/admin/library-items/%d/date-range", item.ID), gin.H{
		"start": "2025-02-02",
		"end":   "2025-01-30",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// malformed date
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/admin/library-items/%d/date-range", item.ID), gin.H{
		"start": "01/30/2025",
		"end":   "2025-02-02",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// a multi-millennium range is rejected before any expansion
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/admin/library-items/%d/date-range", item.ID), gin.H{
		"start": "0001-01-01",
		"end":   "9999-12-31",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "366")
}

func TestCalendarEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	itemA := createItem(t, r, 1, "Overnight Charge")
	itemB := createItem(t, r, 1, "Peak Shaving")

	w := doJSON(t, r, http.MethodPut, "/api/admin/sites/1/default", gin.H{"library_item_id": itemA.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/admin/application-rules", gin.H{
		"library_item_id": itemB.ID,
		"rule_type":       "day_of_week",
		"days_of_week":    []int{3},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/calendar?from=2025-06-16&to=2025-06-20", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cal := decode[packets.CalendarResponse](t, w)
	require.Len(t, cal.Days, 5)

	// Wednesday the 18th is the only day-of-week hit in the window
	for _, day := range cal.Days {
		require.NotNil(t, day.ItemID, day.Date)
		if day.Date == "2025-06-18" {
			assert.Equal(t, itemB.ID, *day.ItemID)
			assert.Equal(t, 1, day.Specificity)
		} else {
			assert.Equal(t, itemA.ID, *day.ItemID)
			assert.Equal(t, 0, day.Specificity)
		}
	}

	// missing query params
	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/calendar", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// window over a year
	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/calendar?from=2025-01-01&to=2026-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the cap is enforced arithmetically, so even an absurd window
	// returns instantly
	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/calendar?from=0001-01-01&to=9999-12-31", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "window too large")
}

func TestRuleErrorStatuses(t *testing.T) {
	r, _, _ := newTestRouter(t)
	item := createItem(t, r, 1, "Overnight Charge")

	// unknown item
	w := doJSON(t, r, http.MethodPost, "/api/admin/application-rules", gin.H{
		"library_item_id": 9999,
		"rule_type":       "day_of_week",
		"days_of_week":    []int{1},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// empty day set
	w = doJSON(t, r, http.MethodPost, "/api/admin/application-rules", gin.H{
		"library_item_id": item.ID,
		"rule_type":       "day_of_week",
		"days_of_week":    []int{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// day out of range
	w = doJSON(t, r, http.MethodPost, "/api/admin/application-rules", gin.H{
		"library_item_id": item.ID,
		"rule_type":       "day_of_week",
		"days_of_week":    []int{8},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// rule_type outside the enum never reaches the service
	w = doJSON(t, r, http.MethodPost, "/api/admin/application-rules", gin.H{
		"library_item_id": item.ID,
		"rule_type":       "hourly",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// item on site 2 cannot be site 1's default
	foreign := createItem(t, r, 2, "Peak Shaving")
	w = doJSON(t, r, http.MethodPut, "/api/admin/sites/1/default", gin.H{"library_item_id": foreign.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// deleting a missing rule
	w = doJSON(t, r, http.MethodDelete, "/api/admin/application-rules/424242", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCascadeDeleteOverHTTP(t *testing.T) {
	r, _, _ := newTestRouter(t)
	item := createItem(t, r, 1, "Overnight Charge")

	w := doJSON(t, r, http.MethodPut, "/api/admin/sites/1/default", gin.H{"library_item_id": item.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/library-items/%d", item.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/admin/sites/1/schedule?date=2025-06-18", nil)
	require.Equal(t, http.StatusOK, w.Code)
	eff := decode[packets.EffectiveResponse](t, w)
	assert.Nil(t, eff.Item)
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := schedule.NewMemory()
	svc := schedule.NewService(store, nil, nil)
	resolver := schedule.NewResolver(store, nil)

	// no user-injecting middleware here
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"},
		RuleModule(svc, resolver, store))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/sites/1/schedule", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
