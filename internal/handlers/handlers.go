// Package handlers wires the credentialing API: template CRUD for the
// editor, rendering previews, print/export in three formats, and the
// reception desk's check-in flow.
package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"credential-service/internal/cache"
	"credential-service/internal/layout"
	"credential-service/internal/models"
	"credential-service/internal/resolve"
	"credential-service/internal/store"

	"github.com/gofiber/fiber/v2"
)

var startTime = time.Now()

// Server bundles the handlers' dependencies.
type Server struct {
	Store *store.Store
}

func New(st *store.Store) *Server {
	return &Server{Store: st}
}

// HealthCheck handles health check requests.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:  "healthy",
		Version: "1.0.0",
		Uptime:  time.Since(startTime).String(),
	})
}

// notFoundOr maps store errors onto 404 vs 500 responses. Persistence
// failures are recoverable: the client keeps its in-memory state and
// retries.
func notFoundOr(c *fiber.Ctx, err error, action string) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(500).JSON(fiber.Map{
		"error":   fmt.Sprintf("failed to %s", action),
		"details": err.Error(),
	})
}

// ============ EVENTS ============

func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var ev models.Event
	if err := c.BodyParser(&ev); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body", "details": err.Error()})
	}
	if ev.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Event name is required"})
	}
	id, err := s.Store.CreateEvent(&ev)
	if err != nil {
		return notFoundOr(c, err, "create event")
	}
	return c.Status(201).JSON(fiber.Map{"id": id})
}

func (s *Server) GetEvent(c *fiber.Ctx) error {
	ev, err := s.Store.GetEvent(c.Params("eventID"))
	if err != nil {
		return notFoundOr(c, err, "load event")
	}
	return c.JSON(ev)
}

// BindableFields returns the field names the editor's binding dropdown
// offers for this event.
func (s *Server) BindableFields(c *fiber.Ctx) error {
	fields, err := s.Store.BindableFields(c.Params("eventID"))
	if err != nil {
		return notFoundOr(c, err, "load event fields")
	}
	return c.JSON(fiber.Map{"fields": fields})
}

// ============ PARTICIPANTS ============

func (s *Server) CreateParticipant(c *fiber.Ctx) error {
	var p models.Participant
	if err := c.BodyParser(&p); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body", "details": err.Error()})
	}
	p.EventID = c.Params("eventID")
	if _, err := s.Store.GetEvent(p.EventID); err != nil {
		return notFoundOr(c, err, "load event")
	}
	id, err := s.Store.CreateParticipant(&p)
	if err != nil {
		return notFoundOr(c, err, "create participant")
	}
	return c.Status(201).JSON(fiber.Map{"id": id})
}

// ListParticipants returns the roster, filtered by ?q= when present.
func (s *Server) ListParticipants(c *fiber.Ctx) error {
	eventID := c.Params("eventID")
	var (
		out []*models.Participant
		err error
	)
	if q := c.Query("q"); q != "" {
		out, err = s.Store.SearchParticipants(eventID, q)
	} else {
		out, err = s.Store.ListParticipants(eventID)
	}
	if err != nil {
		return notFoundOr(c, err, "list participants")
	}
	if out == nil {
		out = []*models.Participant{}
	}
	return c.JSON(out)
}

func (s *Server) GetParticipant(c *fiber.Ctx) error {
	p, err := s.Store.GetParticipant(c.Params("participantID"))
	if err != nil {
		return notFoundOr(c, err, "load participant")
	}
	return c.JSON(p)
}

// Checkin resolves a scanned QR/barcode payload to a participant and marks
// them credentialed.
func (s *Server) Checkin(c *fiber.Ctx) error {
	var req models.CheckinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body", "details": err.Error()})
	}
	if req.Payload == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Scan payload is required"})
	}

	id := resolve.ParseScanPayload(req.Payload)
	p, already, err := s.Store.CheckIn(id)
	if err != nil {
		return notFoundOr(c, err, "check in")
	}
	return c.JSON(models.CheckinResponse{Participant: p, AlreadyChecked: already})
}

// ============ CACHE / ASSETS ============

func (s *Server) GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(cache.Stats())
}

func (s *Server) ClearCache(c *fiber.Ctx) error {
	cache.Clear()
	return c.JSON(fiber.Map{"success": true, "message": "Cache cleared"})
}

// AssetPreview serves a WebP-optimized preview of an image URL for the
// editor's asset picker.
func (s *Server) AssetPreview(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(400).JSON(fiber.Map{"error": "url query parameter is required"})
	}
	maxWidth, _ := strconv.Atoi(c.Query("width", "320"))

	data, err := cache.WebPPreview(url, maxWidth)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "failed to load image", "details": err.Error()})
	}
	c.Set("Content-Type", "image/webp")
	c.Set("Cache-Control", "public, max-age=300")
	return c.Send(data)
}

// seedID generates ids for imported components that arrived without one.
func seedID(id string) string {
	if id != "" {
		return id
	}
	return layout.NewID()
}
