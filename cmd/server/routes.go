package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Voltlane-Energy/voltlane/internal/config"
	"github.com/Voltlane-Energy/voltlane/internal/db"
	"github.com/Voltlane-Energy/voltlane/internal/http/api"
	adminapi "github.com/Voltlane-Energy/voltlane/internal/http/api/admin/endpoints"
	"github.com/Voltlane-Energy/voltlane/internal/schedule"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(
	r *gin.Engine,
	env config.Environment,
	store db.Store,
	svc *schedule.Service,
	resolver *schedule.Resolver,
) {
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
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		adminapi.AuthPublicModule(env.JWTSecret, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.JWTSecret,
		Users:     store,
	},
		adminapi.AuthSessionModule(env.JWTSecret, store),
		adminapi.CompanyModule(store),
		adminapi.SiteModule(store),
		adminapi.LibraryModule(svc, store),
		adminapi.RuleModule(svc, resolver, store),
	)
}
