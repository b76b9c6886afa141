package main

import (
	"log"

	"mutabaah/backend/internal/config"
	"mutabaah/backend/internal/db"
	"mutabaah/backend/internal/handler"
	"mutabaah/backend/internal/repository"
	"mutabaah/backend/internal/router"
	"mutabaah/backend/internal/service"
	syncclient "mutabaah/backend/internal/sync"
	"mutabaah/backend/internal/watch"
)

func main() {
	cfg := config.Load()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	dayRepo := repository.NewDayRepository(database)

	hub := watch.NewHub()

	var remote syncclient.Client = syncclient.Noop{}
	if cfg.SyncBaseURL != "" {
		remote = syncclient.NewHTTPClient(cfg.SyncBaseURL, cfg.SyncTimeout)
	}

	dayService := service.NewDayService(dayRepo, hub, remote, cfg.SyncTimeout)
	statsService := service.NewStatsService(dayRepo, hub, cfg.StatsCacheTTL)
	defer statsService.Close()
	authService := service.NewAuthService(userRepo, dayService, cfg.JWTSecret, cfg.TokenTTL)

	authHandler := handler.NewAuthHandler(authService)
	dayHandler := handler.NewDayHandler(dayService)
	statsHandler := handler.NewStatsHandler(statsService)

	engine := router.New(authService, authHandler, dayHandler, statsHandler, cfg.CORSOrigins)
	log.Printf("backend listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
