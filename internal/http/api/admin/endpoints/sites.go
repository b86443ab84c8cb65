package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Voltlane-Energy/voltlane/internal/db"
	"github.com/Voltlane-Energy/voltlane/internal/http/api"
	"github.com/Voltlane-Energy/voltlane/internal/http/api/admin/packets"
	"github.com/Voltlane-Energy/voltlane/internal/model"
)

type SiteController struct {
	store db.Store
}

func NewSiteController(store db.Store) *SiteController {
	return &SiteController{store: store}
}

func SiteModule(store db.Store) api.Module {
	ctl := NewSiteController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/companies/:id/sites", ctl.listSites)
		c.POST("/companies/:id/sites", ctl.createSite)
		c.GET("/sites/:id", ctl.getSite)
		c.PUT("/sites/:id", ctl.updateSite)
		c.DELETE("/sites/:id", ctl.deleteSite)
	})
}

func siteResponse(s model.Site) packets.SiteResponse {
	return packets.SiteResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		Name:      s.Name,
		Location:  s.Location,
		Timezone:  s.Timezone,
	}
}

func (ctl *SiteController) listSites(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	companyID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid company id"}
	}
	if _, err := ctl.store.GetCompany(companyID); err != nil {
		return nil, apiErrFrom(err)
	}
	list, err := ctl.store.ListSites(companyID)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response := make([]packets.SiteResponse, 0, len(list))
	for _, s := range list {
		response = append(response, siteResponse(s))
	}
	return response, nil
}

func (ctl *SiteController) createSite(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	companyID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid company id"}
	}
	var request packets.CreateSiteRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := ctl.store.GetCompany(companyID); err != nil {
		return nil, apiErrFrom(err)
	}
	timezone := request.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	created, err := ctl.store.CreateSite(companyID, request.Name, request.Location, timezone)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return siteResponse(created), nil
}

func (ctl *SiteController) getSite(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	site, err := ctl.store.GetSite(id)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return siteResponse(*site), nil
}

func (ctl *SiteController) updateSite(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.UpdateSiteRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	updated, err := ctl.store.UpdateSite(id, request.Name, request.Location, request.Timezone)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return siteResponse(*updated), nil
}

func (ctl *SiteController) deleteSite(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := ctl.store.DeleteSite(id); err != nil {
		return nil, apiErrFrom(err)
	}
	return gin.H{"message": "deleted"}, nil
}
