package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/redis"
	"github.com/jumpca/gridsignage/internal/signage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	env := LoadEnvironment()

	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrations failed")
	}

	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	} else {
		log.Warn().Msg("REDIS_ADDRESS not set, player page caching disabled")
	}

	store := db.NewStore(nil)
	registry := signage.NewRegistry(store, env.PublicBaseURL)

	r := gin.Default()
	RegisterRoutes(r, env, store, registry)

	// bounded timeouts so a stuck device poll cannot hold a connection open
	srv := &http.Server{
		Addr:         env.ServerAddress,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("address", env.ServerAddress).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
