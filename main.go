// @title Escape Room API
// @version 1.0
// @description Backend of the story escape-room game: buy a story, walk its stages, unlock hints.

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"escape_room_backend/internal/app"
	"escape_room_backend/internal/config"
	"escape_room_backend/pkg/logger"
	"flag"
	"log"
	"path/filepath"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations on startup even in release mode")
	watch := flag.Bool("watch-config", true, "reload CORS and rate limit settings when config.yaml changes")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration finished, exiting")
		return
	}

	if *watch {
		application.ConfigFile = filepath.Join(*configDir, "config.yaml")
	}
	application.Run()
}
