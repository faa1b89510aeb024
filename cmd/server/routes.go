package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
	authapi "github.com/jumpca/gridsignage/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/jumpca/gridsignage/internal/http/api/admin/endpoints"
	deviceapi "github.com/jumpca/gridsignage/internal/http/api/device/endpoints"
	playerapi "github.com/jumpca/gridsignage/internal/http/api/player/endpoints"
	"github.com/jumpca/gridsignage/internal/signage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, registry *signage.Registry) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		// control modules
		adminapi.DesignModule(store),
		adminapi.PlaylistModule(store),
		adminapi.DeviceModule(store, registry),
		// session endpoints that require auth
		authapi.AuthSessionModule(env.SecretKey, store),
	)

	// device protocol and player pages live at the root, unauthenticated
	api.MountGroup(r, api.GroupConfig{},
		deviceapi.DeviceModule(registry),
		playerapi.PlayerModule(store),
	)
}
