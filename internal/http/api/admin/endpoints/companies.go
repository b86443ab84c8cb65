package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Voltlane-Energy/voltlane/internal/db"
	"github.com/Voltlane-Energy/voltlane/internal/http/api"
	"github.com/Voltlane-Energy/voltlane/internal/http/api/admin/packets"
	"github.com/Voltlane-Energy/voltlane/internal/model"
)

type CompanyController struct {
	store db.Store
}

func NewCompanyController(store db.Store) *CompanyController {
	return &CompanyController{store: store}
}

func CompanyModule(store db.Store) api.Module {
	ctl := NewCompanyController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/companies", ctl.listCompanies)
		c.POST("/companies", ctl.createCompany)
		c.GET("/companies/:id", ctl.getCompany)
		c.PUT("/companies/:id", ctl.updateCompany)
		c.DELETE("/companies/:id", ctl.deleteCompany)
	})
}

func companyResponse(c model.Company) packets.CompanyResponse {
	return packets.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func (ctl *CompanyController) listCompanies(_ *gin.Context, _ *model.User) (any, *api.APIError) {
	list, err := ctl.store.ListCompanies()
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response := make([]packets.CompanyResponse, 0, len(list))
	for _, c := range list {
		response = append(response, companyResponse(c))
	}
	return response, nil
}

func (ctl *CompanyController) createCompany(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.CreateCompanyRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	created, err := ctl.store.CreateCompany(request.Name)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return companyResponse(created), nil
}

func (ctl *CompanyController) getCompany(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	company, err := ctl.store.GetCompany(id)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return companyResponse(*company), nil
}

func (ctl *CompanyController) updateCompany(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.UpdateCompanyRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	updated, err := ctl.store.UpdateCompany(id, request.Name)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return companyResponse(*updated), nil
}

func (ctl *CompanyController) deleteCompany(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := ctl.store.DeleteCompany(id); err != nil {
		return nil, apiErrFrom(err)
	}
	return gin.H{"message": "deleted"}, nil
}
