package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Voltlane-Energy/voltlane/internal/http/api"
	"github.com/Voltlane-Energy/voltlane/internal/http/api/admin/packets"
	"github.com/Voltlane-Energy/voltlane/internal/model"
	"github.com/Voltlane-Energy/voltlane/internal/schedule"
	"github.com/Voltlane-Energy/voltlane/internal/timeutil"
)

type LibraryController struct {
	svc   *schedule.Service
	store schedule.Store
}

func NewLibraryController(svc *schedule.Service, store schedule.Store) *LibraryController {
	return &LibraryController{svc: svc, store: store}
}

func LibraryModule(svc *schedule.Service, store schedule.Store) api.Module {
	ctl := NewLibraryController(svc, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/sites/:id/library-items", ctl.listItems)
		c.POST("/library-items", ctl.createItem)
		c.GET("/library-items/:id", ctl.getItem)
		c.PUT("/library-items/:id", ctl.updateItem)
		c.DELETE("/library-items/:id", ctl.deleteItem)

		c.POST("/library-items/:id/commands", ctl.addCommand)
		c.PUT("/library-items/:id/commands/:command_id", ctl.updateCommand)
		c.DELETE("/library-items/:id/commands/:command_id", ctl.deleteCommand)
	})
}

func commandResponse(c model.Command) packets.CommandResponse {
	clock, _ := timeutil.SecondsToClock(c.ExecutionOffsetSeconds)
	return packets.CommandResponse{
		ID:                     c.ID,
		ExecutionOffsetSeconds: c.ExecutionOffsetSeconds,
		ExecutionTime:          clock,
		CommandType:            string(c.CommandType),
	}
}

func itemResponse(store schedule.Store, item model.LibraryItem) (packets.LibraryItemResponse, error) {
	commands, err := store.ListCommands(item.ID)
	if err != nil {
		return packets.LibraryItemResponse{}, err
	}
	out := packets.LibraryItemResponse{
		ID:          item.ID,
		SiteID:      item.SiteID,
		Name:        item.Name,
		Description: item.Description,
		Commands:    make([]packets.CommandResponse, 0, len(commands)),
	}
	for _, c := range commands {
		out.Commands = append(out.Commands, commandResponse(c))
	}
	return out, nil
}

func (ctl *LibraryController) listItems(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	siteID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid site id"}
	}
	items, err := ctl.store.ListLibraryItems(siteID)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response := make([]packets.LibraryItemResponse, 0, len(items))
	for _, item := range items {
		r, err := itemResponse(ctl.store, item)
		if err != nil {
			return nil, apiErrFrom(err)
		}
		response = append(response, r)
	}
	return response, nil
}

func (ctl *LibraryController) createItem(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.CreateLibraryItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	created, err := ctl.svc.CreateLibraryItem(request.SiteID, request.Name, request.Description)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response, err := itemResponse(ctl.store, created)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return response, nil
}

func (ctl *LibraryController) getItem(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	item, err := ctl.store.LibraryItemByID(id)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response, err := itemResponse(ctl.store, *item)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return response, nil
}

func (ctl *LibraryController) updateItem(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.UpdateLibraryItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	updated, err := ctl.svc.UpdateLibraryItem(id, request.Name, request.Description)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	response, err := itemResponse(ctl.store, *updated)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return response, nil
}

func (ctl *LibraryController) deleteItem(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := ctl.svc.DeleteLibraryItem(id); err != nil {
		return nil, apiErrFrom(err)
	}
	return gin.H{"message": "deleted"}, nil
}

func (ctl *LibraryController) addCommand(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	itemID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}
	var request packets.AddCommandRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	created, err := ctl.svc.AddCommand(itemID, *request.ExecutionOffsetSeconds, model.CommandType(request.CommandType))
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return commandResponse(created), nil
}

func (ctl *LibraryController) updateCommand(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	itemID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}
	commandID, err := strconv.Atoi(ctx.Param("command_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid command id"}
	}
	var request packets.UpdateCommandRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	var kind *model.CommandType
	if request.CommandType != nil {
		k := model.CommandType(*request.CommandType)
		kind = &k
	}
	updated, err := ctl.svc.UpdateCommand(itemID, commandID, request.ExecutionOffsetSeconds, kind)
	if err != nil {
		return nil, apiErrFrom(err)
	}
	return commandResponse(*updated), nil
}

func (ctl *LibraryController) deleteCommand(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	itemID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}
	commandID, err := strconv.Atoi(ctx.Param("command_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid command id"}
	}
	if err := ctl.svc.DeleteCommand(itemID, commandID); err != nil {
		return nil, apiErrFrom(err)
	}
	return gin.H{"message": "deleted"}, nil
}
