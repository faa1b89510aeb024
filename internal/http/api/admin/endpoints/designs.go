package endpoints

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
	"github.com/jumpca/gridsignage/internal/http/api/admin/packets"
	"github.com/jumpca/gridsignage/internal/model"
	"github.com/jumpca/gridsignage/internal/redis"
	"github.com/jumpca/gridsignage/internal/signage"
)

type DesignController struct {
	store db.Store
}

func newDesignController(store db.Store) *DesignController {
	return &DesignController{store: store}
}

// DesignModule mounts all authenticated /designs endpoints.
func DesignModule(store db.Store) api.Module {
	ctl := newDesignController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/designs", ctl.listDesigns)
		c.POST("/designs", ctl.createDesign)
		c.GET("/designs/:id", ctl.getDesign)
		c.PUT("/designs/:id", ctl.updateDesign)
		c.DELETE("/designs/:id", ctl.deleteDesign)
	})
}

// invalidatePlayerCache drops the cached public player page for a slug.
// Devices polling within the TTL would otherwise keep seeing stale content.
func invalidatePlayerCache(slug string) {
	redis.Del(context.Background(), "player:"+slug)
}

func mapDesign(d model.ScreenDesign) packets.DesignResponse {
	return packets.DesignResponse{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		HTMLCode:    d.HTMLCode,
		CSSCode:     d.CSSCode,
		JSCode:      d.JSCode,
		Notes:       d.Notes,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.Format(time.RFC3339),
	}
}

// GET /api/admin/designs?status=active|inactive&search=
func (d *DesignController) listDesigns(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var isActive *bool
	switch ctx.Query("status") {
	case "active":
		v := true
		isActive = &v
	case "inactive":
		v := false
		isActive = &v
	}

	all, err := d.store.ListScreenDesigns(isActive, ctx.Query("search"))
	if err != nil {
		log.Error().Err(err).Msg("[designs] list: could not list designs")
		return nil, storeError(err, "could not list designs")
	}

	out := make([]packets.DesignResponse, 0, len(all))
	for _, design := range all {
		out = append(out, mapDesign(design))
	}
	return out, nil
}

func (d *DesignController) createDesign(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateDesignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("[designs] create: bad request")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	design, err := signage.CreateDesign(d.store, req.Name, req.Description, req.HTMLCode, req.CSSCode, req.JSCode, req.Notes)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("[designs] create: could not create design")
		return nil, storeError(err, "could not create design")
	}
	return mapDesign(design), nil
}

func (d *DesignController) getDesign(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	design, err := d.store.GetScreenDesignByID(id)
	if err != nil {
		return nil, storeError(err, "could not get design")
	}
	return mapDesign(design), nil
}

func (d *DesignController) updateDesign(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	var req packets.UpdateDesignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	existing, err := d.store.GetScreenDesignByID(id)
	if err != nil {
		return nil, storeError(err, "could not get design")
	}

	if err := d.store.UpdateScreenDesign(id, req.Name, req.Description, req.HTMLCode, req.CSSCode, req.JSCode, req.Notes, req.IsActive); err != nil {
		return nil, storeError(err, "could not update design")
	}

	go invalidatePlayerCache(existing.Slug)

	updated, err := d.store.GetScreenDesignByID(id)
	if err != nil {
		return nil, storeError(err, "could not get design")
	}
	return mapDesign(updated), nil
}

func (d *DesignController) deleteDesign(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	existing, err := d.store.GetScreenDesignByID(id)
	if err != nil {
		return nil, storeError(err, "could not get design")
	}

	// Hard delete is refused while the design is referenced by a playlist
	// item or a device assignment; the 409 tells the admin to unassign first.
	if err := d.store.DeleteScreenDesign(id); err != nil {
		return nil, storeError(err, "could not delete design")
	}

	go invalidatePlayerCache(existing.Slug)
	return nil, nil
}
