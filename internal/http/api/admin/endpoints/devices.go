package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
	"github.com/jumpca/gridsignage/internal/http/api/admin/packets"
	"github.com/jumpca/gridsignage/internal/model"
	"github.com/jumpca/gridsignage/internal/signage"
)

type DeviceController struct {
	store    db.Store
	registry *signage.Registry
}

func newDeviceController(store db.Store, registry *signage.Registry) *DeviceController {
	return &DeviceController{store: store, registry: registry}
}

// DeviceModule mounts all authenticated /devices endpoints.
func DeviceModule(store db.Store, registry *signage.Registry) api.Module {
	ctl := newDeviceController(store, registry)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/devices", ctl.listDevices)
		c.GET("/devices/:id", ctl.getDevice)
		c.PUT("/devices/:id", ctl.updateDevice)
		c.DELETE("/devices/:id", ctl.deleteDevice)

		c.POST("/devices/register", ctl.registerWithCode)
		c.POST("/devices/:id/assign", ctl.assignContent)
	})
}

func mapDevice(d model.Device, now time.Time) packets.DeviceResponse {
	assignment := packets.AssignmentResponse{Type: "none"}
	switch a := d.Assignment(); a.Kind {
	case model.AssignmentScreen:
		id := a.ScreenID
		assignment = packets.AssignmentResponse{Type: "screen", ScreenDesignID: &id}
	case model.AssignmentPlaylist:
		id := a.PlaylistID
		assignment = packets.AssignmentResponse{Type: "playlist", PlaylistID: &id}
	}

	return packets.DeviceResponse{
		ID:                    d.ID,
		Name:                  d.Name,
		RegistrationCode:      d.RegistrationCode,
		Registered:            d.Registered,
		IsPendingRegistration: d.IsPendingRegistration(),
		Status:                d.Status(now),
		Assignment:            assignment,
		Location:              d.Location,
		Notes:                 d.Notes,
		LastSeen:              d.LastSeen.Format(time.RFC3339),
		CreatedAt:             d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             d.UpdatedAt.Format(time.RFC3339),
	}
}

func deviceID(ctx *gin.Context) (uuid.UUID, *api.APIError) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid device id"}
	}
	return id, nil
}

func (d *DeviceController) listDevices(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := d.store.ListDevices()
	if err != nil {
		log.Error().Err(err).Msg("[devices] list: could not list devices")
		return nil, storeError(err, "could not list devices")
	}

	now := time.Now()
	out := make([]packets.DeviceResponse, 0, len(all))
	for _, dev := range all {
		out = append(out, mapDevice(dev, now))
	}
	return out, nil
}

func (d *DeviceController) getDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := deviceID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	dev, err := d.store.GetDeviceByID(id)
	if err != nil {
		return nil, storeError(err, "could not get device")
	}
	return mapDevice(dev, time.Now()), nil
}

func (d *DeviceController) updateDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := deviceID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := d.store.UpdateDevice(id, req.Name, req.Location, req.Notes); err != nil {
		return nil, storeError(err, "could not update device")
	}

	dev, err := d.store.GetDeviceByID(id)
	if err != nil {
		return nil, storeError(err, "could not get device")
	}
	return mapDevice(dev, time.Now()), nil
}

func (d *DeviceController) deleteDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := deviceID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := d.store.DeleteDevice(id); err != nil {
		return nil, storeError(err, "could not delete device")
	}
	return nil, nil
}

// POST /api/admin/devices/register
// Staff types the code shown on the TV; the device flips to registered and
// starts receiving content on its next poll.
func (d *DeviceController) registerWithCode(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.RegisterDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	dev, err := d.registry.RegisterByCode(req.RegistrationCode, req.Name)
	if err != nil {
		log.Warn().Err(err).Msg("[devices] register: code lookup failed")
		return nil, storeError(err, "could not register device")
	}
	return mapDevice(dev, time.Now()), nil
}

// POST /api/admin/devices/:id/assign
func (d *DeviceController) assignContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := deviceID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.AssignContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	var err error
	switch req.Type {
	case "screen":
		if req.ScreenDesignID == nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "screen_design_id is required"}
		}
		err = d.registry.AssignScreen(id, *req.ScreenDesignID)
	case "playlist":
		if req.PlaylistID == nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "playlist_id is required"}
		}
		err = d.registry.AssignPlaylist(id, *req.PlaylistID)
	case "none":
		err = d.registry.Unassign(id)
	}
	if err != nil {
		log.Error().Err(err).Str("device_id", id.String()).Str("type", req.Type).
			Msg("[devices] assign failed")
		return nil, storeError(err, "could not assign content")
	}

	dev, err := d.store.GetDeviceByID(id)
	if err != nil {
		return nil, storeError(err, "could not get device")
	}
	return mapDevice(dev, time.Now()), nil
}
