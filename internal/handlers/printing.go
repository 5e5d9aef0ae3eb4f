package handlers

import (
	"encoding/base64"
	"fmt"
	"sync"

	"credential-service/internal/cache"
	"credential-service/internal/layout"
	"credential-service/internal/models"
	"credential-service/internal/printer"
	"credential-service/internal/render"

	"github.com/gofiber/fiber/v2"
)

// resolveTemplate picks the template a render/print request refers to:
// inline document, explicit id, or the event's default.
func (s *Server) resolveTemplate(inline *models.Template, templateID, eventID string) (*models.Template, error) {
	switch {
	case inline != nil:
		return inline, nil
	case templateID != "":
		return s.Store.GetTemplate(templateID)
	case eventID != "":
		return s.Store.DefaultTemplate(eventID)
	default:
		return nil, fmt.Errorf("template is required")
	}
}

// recordFor loads the flat field map for a participant id; empty id means
// no sample data (the editor's placeholder case).
func (s *Server) recordFor(participantID string) (models.Record, error) {
	if participantID == "" {
		return nil, nil
	}
	p, err := s.Store.GetParticipant(participantID)
	if err != nil {
		return nil, err
	}
	return p.Fields, nil
}

// RenderPreview returns the rendered surface as an HTML fragment for the
// requested target (editor, preview or print).
func (s *Server) RenderPreview(c *fiber.Ctx) error {
	var req models.RenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body", "details": err.Error()})
	}

	t, err := s.resolveTemplate(req.Template, req.TemplateID, "")
	if err != nil {
		return notFoundOr(c, err, "load template")
	}
	record, err := s.recordFor(req.ParticipantID)
	if err != nil {
		return notFoundOr(c, err, "load participant")
	}

	surface := layout.SurfaceFor(t)
	html := render.Surface(surface, t.Components, record, render.ParseTarget(req.Target))
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(html)
}

func (s *Server) printInputs(c *fiber.Ctx) (*models.Template, models.Record, error) {
	var req models.PrintRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, fmt.Errorf("invalid request body: %w", err)
	}
	t, err := s.resolveTemplate(req.Template, req.TemplateID, req.EventID)
	if err != nil {
		return nil, nil, err
	}
	record, err := s.recordFor(req.ParticipantID)
	if err != nil {
		return nil, nil, err
	}
	return t, record, nil
}

// PrintHTML emits the self-contained browser print document.
func (s *Server) PrintHTML(c *fiber.Ctx) error {
	t, record, err := s.printInputs(c)
	if err != nil {
		return notFoundOr(c, err, "prepare print")
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(printer.BuildHTML(t, record))
}

// PrintPDF emits the credential as a PDF at physical size.
func (s *Server) PrintPDF(c *fiber.Ctx) error {
	t, record, err := s.printInputs(c)
	if err != nil {
		return notFoundOr(c, err, "prepare print")
	}
	pdfBytes, err := printer.BuildPDF(t, record)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate PDF", "details": err.Error()})
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", "inline; filename=credential.pdf")
	return c.Send(pdfBytes)
}

// PrintZPL emits label-printer commands for the credential.
func (s *Server) PrintZPL(c *fiber.Ctx) error {
	t, record, err := s.printInputs(c)
	if err != nil {
		return notFoundOr(c, err, "prepare print")
	}
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.SendString(printer.BuildZPL(t, record))
}

// PrintBatchPDF renders one PDF per participant against a single template,
// fanning out with bounded concurrency.
func (s *Server) PrintBatchPDF(c *fiber.Ctx) error {
	var req models.BatchPrintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body", "details": err.Error()})
	}
	if len(req.ParticipantIDs) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "No participants provided"})
	}
	if len(req.ParticipantIDs) > 500 {
		return c.Status(400).JSON(fiber.Map{"error": "Maximum 500 participants per batch"})
	}

	t, err := s.Store.GetTemplate(req.TemplateID)
	if err != nil {
		return notFoundOr(c, err, "load template")
	}

	// Template images are shared across the whole batch; fetch them once.
	images := map[string][]byte{}
	if reqs := printer.ImageRequests(t); len(reqs) > 0 {
		images = cache.PreloadImages(reqs)
	}

	results := make([]models.BatchPrintResult, len(req.ParticipantIDs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, 50)

	for i, pid := range req.ParticipantIDs {
		wg.Add(1)
		go func(idx int, participantID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := models.BatchPrintResult{ParticipantID: participantID}

			p, err := s.Store.GetParticipant(participantID)
			if err != nil {
				result.Error = err.Error()
				results[idx] = result
				return
			}

			gen := printer.NewPDFGenerator(t, p.Fields)
			gen.SetImageCache(images)
			pdfBytes, err := gen.Generate()
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Success = true
				result.PDFBase64 = base64.StdEncoding.EncodeToString(pdfBytes)
			}
			results[idx] = result
		}(i, pid)
	}

	wg.Wait()

	successCount := 0
	for _, r := range results {
		if r.Success {
			successCount++
		}
	}
	return c.JSON(models.BatchPrintResponse{
		Success: successCount == len(results),
		Total:   len(results),
		Results: results,
	})
}
