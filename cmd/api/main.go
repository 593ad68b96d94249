package main

import (
	"log"

	"github.com/contentkit/openai-gateway/internal/config"
	"github.com/contentkit/openai-gateway/pkg/server"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	envFiles := []string{".env.local", ".env.development", ".env"}
	config.LoadEnvFiles(envFiles)

	cfg, err := config.LoadFromFile("config.yaml")
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	settings := config.NewSettings(cfg.Storage.SettingsPath)
	if err := settings.Load(); err != nil {
		fiberlog.Fatalf("Failed to load settings: %v", err)
	}

	srv := server.New(cfg, settings)

	log.Println("Starting OpenAI gateway server...")
	if err := srv.Run(); err != nil {
		fiberlog.Fatalf("Server failed: %v", err)
	}
}
