package main

import (
	"fmt"
	"os"
	"time"

	"credential-service/internal/cache"
	"credential-service/internal/handlers"
	"credential-service/internal/store"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	DBPath      string `env:"DB_PATH" envDefault:"credentials.db"`
	BodyLimitMB int    `env:"BODY_LIMIT_MB" envDefault:"50"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	cache.Init()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("❌ Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	app := fiber.New(fiber.Config{
		ServerHeader: "Credential-Service",
		AppName:      "Event Credential Service v1.0.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupRoutes(app, handlers.New(st))

	fmt.Printf("🚀 Credential Service starting on port %s\n", cfg.Port)
	fmt.Printf("💾 Database: %s\n", cfg.DBPath)

	if err := app.Listen(":" + cfg.Port); err != nil {
		fmt.Printf("❌ Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

func setupRoutes(app *fiber.App, h *handlers.Server) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Event Credential Service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	app.Get("/health", h.HealthCheck)

	api := app.Group("/api")

	// Events and participant roster
	api.Post("/events", h.CreateEvent)
	api.Get("/events/:eventID", h.GetEvent)
	api.Get("/events/:eventID/fields", h.BindableFields)
	api.Post("/events/:eventID/participants", h.CreateParticipant)
	api.Get("/events/:eventID/participants", h.ListParticipants)
	api.Get("/participants/:participantID", h.GetParticipant)

	// Badge/panel templates
	api.Get("/events/:eventID/templates", h.ListTemplates)
	api.Post("/events/:eventID/templates", h.CreateTemplate)
	api.Post("/events/:eventID/templates/import", h.ImportTemplate)
	api.Put("/events/:eventID/templates/:templateID/default", h.SetDefaultTemplate)
	api.Get("/templates/:templateID", h.GetTemplate)
	api.Put("/templates/:templateID", h.UpdateTemplate)
	api.Delete("/templates/:templateID", h.DeleteTemplate)
	api.Get("/templates/:templateID/export", h.ExportTemplate)

	// Rendering and printing
	api.Post("/render", h.RenderPreview)
	api.Post("/print/html", h.PrintHTML)
	api.Post("/print/pdf", h.PrintPDF)
	api.Post("/print/zpl", h.PrintZPL)
	api.Post("/print/pdf/batch", h.PrintBatchPDF)

	// Reception desk
	api.Post("/checkin", h.Checkin)

	// Assets and cache
	api.Get("/assets/preview", h.AssetPreview)
	api.Get("/cache/stats", h.GetCacheStats)
	api.Post("/cache/clear", h.ClearCache)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "Not found",
			"path":  c.Path(),
		})
	})
}
