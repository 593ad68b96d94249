// Package api wires the HTTP handlers for the facade: content generation,
// upstream passthrough, admin settings, and health.
package api

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers bundles everything route registration needs.
type Handlers struct {
	Generate *GenerateHandler
	Upstream *UpstreamHandler
	Settings *SettingsHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts every endpoint under /api.
func RegisterRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	api.Get("/health", h.Health.HealthCheck)

	gen := api.Group("/generate")
	gen.Post("/title", h.Generate.Title)
	gen.Post("/description", h.Generate.Description)
	gen.Post("/tags", h.Generate.Tags)
	gen.Post("/timestamps", h.Generate.Timestamps)
	gen.Post("/shorts-ideas", h.Generate.Shorts)

	api.Post("/embeddings", h.Upstream.Embeddings)
	api.Post("/images/generate", h.Upstream.Images)
	api.Post("/audio/transcribe", h.Upstream.Transcribe)
	api.Post("/moderation", h.Upstream.Moderate)
	api.Get("/models", h.Upstream.Models)
	api.Get("/files", h.Upstream.Files)
	api.Post("/files/upload", h.Upstream.Upload)
	api.Post("/openai/request", h.Upstream.Raw)

	admin := api.Group("/admin")
	admin.Get("/settings", h.Settings.Get)
	admin.Put("/settings", h.Settings.Update)
	admin.Post("/settings/test", h.Settings.Test)
}
