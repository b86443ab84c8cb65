package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/cache"
	"github.com/Voltlane-Energy/voltlane/internal/config"
	"github.com/Voltlane-Energy/voltlane/internal/db"
	"github.com/Voltlane-Energy/voltlane/internal/dispatch"
	"github.com/Voltlane-Energy/voltlane/internal/schedule"
)

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogging(env.AppEnv)

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	store := db.NewStore(nil)

	// cache and MQTT are optional collaborators; the engine runs
	// without either
	var scheduleCache schedule.Cache
	if env.RedisAddress != "" {
		scheduleCache = cache.New(env.RedisAddress, env.RedisUsername, env.RedisPassword)
		log.Info().Str("addr", env.RedisAddress).Msg("schedule cache enabled")
	}

	var notifier schedule.Notifier
	if env.MQTTBrokerURL != "" {
		publisher, err := dispatch.NewPublisher(env.MQTTBrokerURL, "voltlane-server")
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect failed")
		}
		defer publisher.Close()
		notifier = publisher
	}

	svc := schedule.NewService(store, scheduleCache, notifier)
	resolver := schedule.NewResolver(store, scheduleCache)

	if env.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	RegisterRoutes(r, env, store, svc, resolver)

	log.Info().Str("addr", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
