package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Voltlane-Energy/voltlane/internal/http/api"
	"github.com/Voltlane-Energy/voltlane/internal/http/api/admin/packets"
	"github.com/Voltlane-Energy/voltlane/internal/model"
	"github.com/Voltlane-Energy/voltlane/internal/schedule"
	"github.com/Voltlane-Energy/voltlane/internal/timeutil"
)

// calendar windows are capped so a bad query can't resolve years of
// days in one request
const maxCalendarDays = 366

type RuleController struct {
	svc      *schedule.Service
	resolver *schedule.Resolver
	store    schedule.Store
}

func NewRuleController(svc *schedule.Service, resolver *schedule.Resolver, store schedule.Store) *RuleController {
	return &RuleController{svc: svc, resolver: resolver, store: store}
}

func RuleModule(svc *schedule.Service, resolver *schedule.Resolver, store schedule.Store) api.Module {
	ctl := NewRuleController(svc, resolver, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/library-items/:id/application-rules", ctl.listRules)
		c.POST("/application-rules", ctl.createRule)
		c.DELETE("/application-rules/:id", ctl.deleteRule)
		c.POST("/library-items/:id/date-range", ctl.addDateRange)

		c.PUT("/sites/:id/default", ctl.setDefault)
		c.DELETE("/sites/:id/default", ctl.clearDefault)

		c.GET("/sites/:id/schedule", ctl.effective)
		c.GET("/sites/:id/schedule/applicable", ctl.allApplicable)
		c.GET("/sites/:id/calendar", ctl.calendar)
	})
}

func ruleResponse(r model.ApplicationRule) packets.RuleResponse {
	out := packets.RuleResponse{
		ID:            r.ID,
		SiteID:        r.SiteID,
		LibraryItemID: r.LibraryItemID,
		RuleType:      string(r.Kind),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	for _, d := range r.DaysOfWeek {
		out.DaysOfWeek = append(out.DaysOfWeek, int(d))
	}
	out.SpecificDates = append(out.SpecificDates, r.SpecificDates...)
	return out
}

// GET /library-items/:id/application-rules
func (ctl *RuleController) listRules(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	itemID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}
	rules, err := ctl.svc.ListRulesForItem(itemID)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response := make([]packets.RuleResponse, 0, len(rules))
	for _, r := range rules {
		response = append(response, ruleResponse(r))
	}
	return response, nil
}

// POST /application-rules
func (ctl *RuleController) createRule(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.CreateRuleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	switch model.RuleKind(request.RuleType) {
	case model.RuleDefault:
		item, err := ctl.store.LibraryItemByID(request.LibraryItemID)
		if err != nil {
			return nil, apiErrFrom(err)
		}
		created, err := ctl.svc.SetDefault(item.SiteID, item.ID)
		if err != nil {
			return nil, apiErrFrom(err)
		}
		return ruleResponse(created), nil

	case model.RuleDayOfWeek:
		created, err := ctl.svc.AddDayOfWeekRule(request.LibraryItemID, request.DaysOfWeek)
		if err != nil {
			return nil, apiErrFrom(err)
		}
		return ruleResponse(created), nil

	case model.RuleSpecificDate:
		dates, apiErr := parseISODates(request.SpecificDates)
		if apiErr != nil {
			return nil, apiErr
		}
		created, err := ctl.svc.AddSpecificDates(request.LibraryItemID, dates)
		if err != nil {
			return nil, apiErrFrom(err)
		}
		return ruleResponse(created), nil
	}
	return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown rule_type"}
}

// DELETE /application-rules/:id
func (ctl *RuleController) deleteRule(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := ctl.svc.DeleteRule(id); err != nil {
		return nil, apiErrFrom(err)
	}
	return gin.H{"message": "deleted"}, nil
}

// POST /library-items/:id/date-range
func (ctl *RuleController) addDateRange(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	itemID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}
	var request packets.DateRangeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	start, err := timeutil.ParseISODate(request.Start)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	end, err := timeutil.ParseISODate(request.End)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	created, err := ctl.svc.AddDateRange(itemID, start, end)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return ruleResponse(created), nil
}

// PUT /sites/:id/default
func (ctl *RuleController) setDefault(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	siteID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid site id"}
	}
	var request packets.SetDefaultRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	created, err := ctl.svc.SetDefault(siteID, request.LibraryItemID)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return ruleResponse(created), nil
}

// DELETE /sites/:id/default
func (ctl *RuleController) clearDefault(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	siteID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid site id"}
	}
	if err := ctl.svc.ClearDefault(siteID); err != nil {
		return nil, apiErrFrom(err)
	}
	return gin.H{"message": "cleared"}, nil
}

// GET /sites/:id/schedule?date=YYYY-MM-DD
func (ctl *RuleController) effective(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	siteID, date, apiErr := siteAndDate(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	resolved, err := ctl.resolver.Effective(siteID, date)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response := packets.EffectiveResponse{
		Date:        timeutil.ToISODate(date),
		Specificity: int(model.SpecificityNone),
	}
	if resolved != nil {
		item, err := itemResponse(ctl.store, resolved.Item)
		if err != nil {
			return nil, apiErrFrom(err)
		}
		response.Specificity = int(resolved.Specificity)
		response.Item = &item
	}
	return response, nil
}

// GET /sites/:id/schedule/applicable?date=YYYY-MM-DD
func (ctl *RuleController) allApplicable(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	siteID, date, apiErr := siteAndDate(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	applicable, err := ctl.resolver.AllApplicable(siteID, date)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response := packets.ApplicableResponse{
		Date:    timeutil.ToISODate(date),
		Entries: make([]packets.ApplicableEntry, 0, len(applicable)),
	}
	for _, entry := range applicable {
		item, err := itemResponse(ctl.store, entry.Item)
		if err != nil {
			return nil, apiErrFrom(err)
		}
		response.Entries = append(response.Entries, packets.ApplicableEntry{
			Item:        item,
			Specificity: int(entry.Specificity),
			RuleID:      entry.RuleID,
			IsActive:    entry.IsActive,
		})
	}
	return response, nil
}

// GET /sites/:id/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
func (ctl *RuleController) calendar(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	siteID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid site id"}
	}
	var query packets.CalendarQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	from, err := timeutil.ParseISODate(query.From)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	to, err := timeutil.ParseISODate(query.To)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if to.Before(from) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "to before from"}
	}
	if timeutil.DaysBetween(from, to) > maxCalendarDays {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "window too large"}
	}
	days := timeutil.ExpandRange(from, to)

	response := packets.CalendarResponse{
		From: timeutil.ToISODate(from),
		To:   timeutil.ToISODate(to),
		Days: make([]packets.CalendarDay, 0, len(days)),
	}
	for i := range days {
		date := timeutil.AddDays(from, i)
		resolved, err := ctl.resolver.Effective(siteID, date)
		if err != nil {
			return nil, apiErrFrom(err)
		}
		day := packets.CalendarDay{Date: days[i], Specificity: int(model.SpecificityNone)}
		if resolved != nil {
			day.Specificity = int(resolved.Specificity)
			day.ItemID = &resolved.Item.ID
			day.ItemName = &resolved.Item.Name
		}
		response.Days = append(response.Days, day)
	}
	return response, nil
}

func siteAndDate(ctx *gin.Context) (int, time.Time, *api.APIError) {
	siteID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, time.Time{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid site id"}
	}
	raw := ctx.Query("date")
	if raw == "" {
		return siteID, timeutil.StartOfDay(time.Now()), nil
	}
	date, err := timeutil.ParseISODate(raw)
	if err != nil {
		return 0, time.Time{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return siteID, date, nil
}

func parseISODates(raw []string) ([]time.Time, *api.APIError) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := timeutil.ParseISODate(s)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
		}
		out = append(out, d)
	}
	return out, nil
}
