package printer

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image/png"

	"credential-service/internal/cache"
	"credential-service/internal/layout"
	"credential-service/internal/models"
	"credential-service/internal/render"
	"credential-service/internal/resolve"

	"github.com/jung-kurt/gofpdf"
)

// Millimeters per surface pixel at the fixed print resolution (8 px/mm).
const mmPerPx = 25.4 / layout.DPI

// PDFGenerator renders one template + record pair to a PDF page at the
// template's physical size.
type PDFGenerator struct {
	template *models.Template
	record   models.Record
	surface  models.Surface
	pdf      *gofpdf.Fpdf

	// Core fonts index cp1252, not UTF-8; every drawn string goes through
	// this translator or accented names come out as mojibake.
	tr func(string) string

	// URL -> pre-fitted PNG bytes, filled by SetImageCache.
	images map[string][]byte
}

// NewPDFGenerator creates a generator for the template and record.
func NewPDFGenerator(t *models.Template, record models.Record) *PDFGenerator {
	surface := layout.SurfaceFor(t)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size: gofpdf.SizeType{
			Wd: float64(surface.Width) * mmPerPx,
			Ht: float64(surface.Height) * mmPerPx,
		},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	return &PDFGenerator{
		template: t,
		record:   record,
		surface:  surface,
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		images:   make(map[string][]byte),
	}
}

// SetImageCache supplies pre-fetched component images (URL -> PNG bytes).
func (g *PDFGenerator) SetImageCache(images map[string][]byte) {
	if images != nil {
		g.images = images
	}
}

// Generate renders every component in template order and returns the PDF
// bytes. A failing component becomes an empty box; only a failure to emit
// the document itself is an error.
func (g *PDFGenerator) Generate() ([]byte, error) {
	for _, c := range g.template.Components {
		g.renderComponent(c)
	}

	var buf bytes.Buffer
	if err := g.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("output pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *PDFGenerator) renderComponent(c models.Component) {
	x := float64(c.X) * mmPerPx
	y := float64(c.Y) * mmPerPx
	w := float64(c.Width) * mmPerPx
	h := float64(c.Height) * mmPerPx
	eff := render.Effective(c.Style)

	g.paintBox(x, y, w, h, eff, c.Type == models.TypeDivider)

	switch c.Type {
	case models.TypeText, models.TypeField, models.TypeButton:
		g.renderText(c, eff, x, y, w, h)
	case models.TypeQRCode:
		payload := resolve.QRPayload(g.record)
		size := c.Width
		if c.Height < size {
			size = c.Height
		}
		data, err := render.EncodeQRPNG(payload, size)
		if err != nil {
			return
		}
		side := w
		if h < side {
			side = h
		}
		g.drawPNG("qr_"+c.ID, data, x, y, side, side)
	case models.TypeBarcode:
		value := resolve.Resolve(c, g.record)
		data, err := render.EncodeBarcodePNG(value, c.Width, c.Height)
		if err != nil {
			return
		}
		g.drawPNG("bc_"+c.ID, data, x, y, w, h)
	case models.TypeImage:
		g.renderImage(c, x, y, w, h)
	case models.TypeDivider:
		// Box fill painted above; dividers carry no content.
	default:
		// Unknown type: visible placeholder so a corrupted template still
		// prints inspectably.
		g.pdf.SetDrawColor(150, 150, 150)
		g.pdf.SetLineWidth(0.2)
		g.pdf.Rect(x, y, w, h, "D")
		g.pdf.SetFont("Arial", "", 6)
		g.pdf.SetTextColor(150, 150, 150)
		g.pdf.SetXY(x, y)
		g.pdf.CellFormat(w, h, "?", "", 0, "CM", false, 0, "")
	}
}

// paintBox draws the background fill and border shared by all component
// types. Dividers fall back to a light fill so they stay visible.
func (g *PDFGenerator) paintBox(x, y, w, h float64, eff models.Style, divider bool) {
	bg := eff.Background
	if divider && bg == render.DefaultBackground {
		bg = "#f0f0f0"
	}
	if bg != render.DefaultBackground && bg != "" {
		r, gr, b := render.HexToRGB(bg)
		g.pdf.SetFillColor(r, gr, b)
		if eff.BorderRadius > 0 {
			g.pdf.RoundedRect(x, y, w, h, float64(eff.BorderRadius)*mmPerPx, "1234", "F")
		} else {
			g.pdf.Rect(x, y, w, h, "F")
		}
	}
	if eff.BorderWidth > 0 {
		borderColor := eff.BorderColor
		if borderColor == "" {
			borderColor = render.DefaultColor
		}
		r, gr, b := render.HexToRGB(borderColor)
		g.pdf.SetDrawColor(r, gr, b)
		g.pdf.SetLineWidth(float64(eff.BorderWidth) * mmPerPx)
		if eff.BorderRadius > 0 {
			g.pdf.RoundedRect(x, y, w, h, float64(eff.BorderRadius)*mmPerPx, "1234", "D")
		} else {
			g.pdf.Rect(x, y, w, h, "D")
		}
	}
}

func (g *PDFGenerator) renderText(c models.Component, eff models.Style, x, y, w, h float64) {
	value := resolve.Resolve(c, g.record)
	if value == "" {
		return
	}

	fontStyle := ""
	if eff.Bold {
		fontStyle += "B"
	}
	if eff.Italic {
		fontStyle += "I"
	}
	if eff.Underline {
		fontStyle += "U"
	}

	// Font sizes are pixels in the surface space; convert through the same
	// resolution constant the surface uses, so PDF text matches the HTML
	// targets at physical size.
	fontPt := float64(eff.FontSize) * 72.0 / layout.DPI
	g.pdf.SetFont(coreFont(eff.FontFamily), fontStyle, fontPt)

	r, gr, b := render.HexToRGB(eff.Color)
	g.pdf.SetTextColor(r, gr, b)

	align := "LM"
	switch eff.Align {
	case "center":
		align = "CM"
	case "right":
		align = "RM"
	}
	if c.Type == models.TypeButton {
		align = "CM"
	}

	g.pdf.SetXY(x, y)
	g.pdf.CellFormat(w, h, g.tr(value), "", 0, align, false, 0, "")
}

func (g *PDFGenerator) renderImage(c models.Component, x, y, w, h float64) {
	if c.ImageURL == "" {
		return
	}
	data, ok := g.images[c.ImageURL]
	if !ok {
		var err error
		data, err = cache.GetImageData(c.ImageURL, c.Width, c.Height)
		if err != nil {
			return
		}
	}

	// The cache pre-fits images inside the component box with aspect ratio
	// preserved; center the result within the box.
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return
	}
	iw := float64(cfg.Width) * mmPerPx
	ih := float64(cfg.Height) * mmPerPx
	g.drawPNG("img_"+c.ID, data, x+(w-iw)/2, y+(h-ih)/2, iw, ih)
}

// drawPNG registers in-memory PNG bytes under a content-hashed name and
// draws them; registration names must be unique per image within the
// document.
func (g *PDFGenerator) drawPNG(prefix string, data []byte, x, y, w, h float64) {
	hash := md5.Sum(data)
	name := fmt.Sprintf("%s_%x", prefix, hash[:8])

	info := g.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
	if info == nil {
		return
	}
	g.pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

// coreFont maps a template font family onto the PDF core fonts.
func coreFont(family string) string {
	switch family {
	case "Times", "Times New Roman", "Georgia", "serif":
		return "Times"
	case "Courier", "Courier New", "monospace":
		return "Courier"
	default:
		return "Arial"
	}
}

// BuildPDF is the one-call pipeline: preload images, render, return bytes.
func BuildPDF(t *models.Template, record models.Record) ([]byte, error) {
	gen := NewPDFGenerator(t, record)
	if reqs := ImageRequests(t); len(reqs) > 0 {
		gen.SetImageCache(cache.PreloadImages(reqs))
	}
	return gen.Generate()
}
