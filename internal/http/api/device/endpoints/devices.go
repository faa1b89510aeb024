package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
	"github.com/jumpca/gridsignage/internal/http/api/device/packets"
	"github.com/jumpca/gridsignage/internal/signage"
)

// DeviceController serves the unauthenticated device protocol. Handlers are
// plain gin handlers: the wire shapes carry their own success flag and the
// error policy differs from the admin surface (no 5xx for data the device
// cannot act on).
type DeviceController struct {
	registry *signage.Registry
}

func NewDeviceController(registry *signage.Registry) *DeviceController {
	return &DeviceController{registry: registry}
}

// DeviceModule mounts the four device protocol endpoints.
func DeviceModule(registry *signage.Registry) api.Module {
	ctl := NewDeviceController(registry)
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.POST("/devices/request-code", ctl.requestCode)
		c.Group.POST("/devices/:device_id/register", ctl.register)
		c.Group.GET("/devices/:device_id/config", ctl.getConfig)
		c.Group.GET("/devices/by-code/:code/config", ctl.getConfigByCode)
	})
}

// POST /devices/request-code
// Always mints a new device; a reinstalled app gets a fresh identity.
func (d *DeviceController) requestCode(c *gin.Context) {
	var req packets.RequestCodeRequest
	// body is optional; a bare POST is a valid first contact
	_ = c.ShouldBindJSON(&req)

	device, err := d.registry.RequestCode(req.DeviceName)
	if err != nil {
		log.Error().Err(err).Msg("[device-api] request-code failed")
		c.JSON(http.StatusServiceUnavailable, packets.ErrorResponse{
			Success: false,
			Error:   "could not allocate a registration code",
		})
		return
	}

	c.JSON(http.StatusOK, packets.RequestCodeResponse{
		Success:          true,
		DeviceID:         device.ID,
		RegistrationCode: device.RegistrationCode,
	})
}

// POST /devices/:device_id/register
// A wrong code answers registered:false with no further detail, so the
// endpoint reveals nothing about which devices or codes exist.
func (d *DeviceController) register(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("device_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, packets.ErrorResponse{Success: false, Error: "device not found"})
		return
	}

	var req packets.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, packets.ErrorResponse{Success: false, Error: "registration_code is required"})
		return
	}

	registered, err := d.registry.Register(deviceID, req.RegistrationCode)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, packets.ErrorResponse{Success: false, Error: "device not found"})
			return
		}
		log.Error().Err(err).Str("device_id", deviceID.String()).Msg("[device-api] register failed")
		c.JSON(http.StatusServiceUnavailable, packets.ErrorResponse{Success: false, Error: "temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, packets.RegisterResponse{Success: true, Registered: registered})
}

// GET /devices/:device_id/config
func (d *DeviceController) getConfig(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("device_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, packets.ErrorResponse{Success: false, Error: "device not found"})
		return
	}

	cfg, err := d.registry.ResolveConfig(deviceID)
	d.respondConfig(c, cfg, err)
}

// GET /devices/by-code/:code/config
func (d *DeviceController) getConfigByCode(c *gin.Context) {
	cfg, err := d.registry.ResolveConfigByCode(c.Param("code"))
	d.respondConfig(c, cfg, err)
}

func (d *DeviceController) respondConfig(c *gin.Context, cfg signage.DeviceConfig, err error) {
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, packets.ErrorResponse{Success: false, Error: "device not found"})
			return
		}
		log.Error().Err(err).Msg("[device-api] config resolution failed")
		c.JSON(http.StatusServiceUnavailable, packets.ErrorResponse{Success: false, Error: "temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, packets.MapConfig(cfg))
}
