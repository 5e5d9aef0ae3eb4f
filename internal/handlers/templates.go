package handlers

import (
	"fmt"

	"credential-service/internal/layout"
	"credential-service/internal/models"

	"github.com/gofiber/fiber/v2"
)

func validateTemplate(t *models.Template) error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if (t.WidthCm != 0 || t.HeightCm != 0) && (t.WidthCm <= 0 || t.HeightCm <= 0) {
		return fmt.Errorf("physical dimensions must both be positive")
	}
	for i := range t.Components {
		cp := &t.Components[i]
		cp.ID = seedID(cp.ID)
		if cp.Width <= 0 || cp.Height <= 0 {
			return fmt.Errorf("component %s: dimensions must be positive", cp.ID)
		}
		if cp.X < 0 || cp.Y < 0 {
			return fmt.Errorf("component %s: position must be non-negative", cp.ID)
		}
		// Unknown component types are kept: they render as visible
		// placeholders instead of being rejected, so a future-versioned
		// template stays editable.
	}
	return nil
}

// ListTemplates returns every template for an event.
func (s *Server) ListTemplates(c *fiber.Ctx) error {
	out, err := s.Store.ListTemplates(c.Params("eventID"))
	if err != nil {
		return notFoundOr(c, err, "list templates")
	}
	if out == nil {
		out = []*models.Template{}
	}
	return c.JSON(out)
}

// CreateTemplate creates a template for an event. With ?starter=true the
// template is seeded with the stock badge layout instead of starting empty.
func (s *Server) CreateTemplate(c *fiber.Ctx) error {
	eventID := c.Params("eventID")
	ev, err := s.Store.GetEvent(eventID)
	if err != nil {
		return notFoundOr(c, err, "load event")
	}

	var t models.Template
	if err := c.BodyParser(&t); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body", "details": err.Error()})
	}
	t.EventID = eventID
	if t.Components == nil {
		t.Components = []models.Component{}
	}
	if c.QueryBool("starter") && len(t.Components) == 0 {
		t.Components = layout.StarterComponents(ev.Name)
	}
	if err := validateTemplate(&t); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := s.Store.CreateTemplate(&t)
	if err != nil {
		return notFoundOr(c, err, "create template")
	}
	return c.Status(201).JSON(fiber.Map{"id": id})
}

func (s *Server) GetTemplate(c *fiber.Ctx) error {
	t, err := s.Store.GetTemplate(c.Params("templateID"))
	if err != nil {
		return notFoundOr(c, err, "load template")
	}
	return c.JSON(t)
}

func (s *Server) UpdateTemplate(c *fiber.Ctx) error {
	var t models.Template
	if err := c.BodyParser(&t); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body", "details": err.Error()})
	}
	if err := validateTemplate(&t); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.Store.UpdateTemplate(c.Params("templateID"), &t); err != nil {
		return notFoundOr(c, err, "update template")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) DeleteTemplate(c *fiber.Ctx) error {
	if err := s.Store.DeleteTemplate(c.Params("templateID")); err != nil {
		return notFoundOr(c, err, "delete template")
	}
	return c.JSON(fiber.Map{"success": true})
}

// SetDefaultTemplate flags one template as the event's default; all others
// are unset in the same transaction.
func (s *Server) SetDefaultTemplate(c *fiber.Ctx) error {
	if err := s.Store.SetDefault(c.Params("eventID"), c.Params("templateID")); err != nil {
		return notFoundOr(c, err, "set default template")
	}
	return c.JSON(fiber.Map{"success": true})
}

// ExportTemplate serves the template as a downloadable JSON document in the
// same format the store persists, so export/import round-trips unchanged.
func (s *Server) ExportTemplate(c *fiber.Ctx) error {
	t, err := s.Store.GetTemplate(c.Params("templateID"))
	if err != nil {
		return notFoundOr(c, err, "load template")
	}
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=template_%s.json", t.ID))
	return c.JSON(t)
}

// ImportTemplate creates a template from an exported JSON document. The
// import gets a fresh template id; component ids are kept so the layout
// diffs cleanly against its source.
func (s *Server) ImportTemplate(c *fiber.Ctx) error {
	eventID := c.Params("eventID")
	if _, err := s.Store.GetEvent(eventID); err != nil {
		return notFoundOr(c, err, "load event")
	}

	var t models.Template
	if err := c.BodyParser(&t); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid template document", "details": err.Error()})
	}
	t.ID = ""
	t.EventID = eventID
	t.IsDefault = false
	if t.Components == nil {
		t.Components = []models.Component{}
	}
	if err := validateTemplate(&t); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := s.Store.CreateTemplate(&t)
	if err != nil {
		return notFoundOr(c, err, "import template")
	}
	return c.Status(201).JSON(fiber.Map{"id": id})
}
