// Package printer is the print/export pipeline: it pairs a finalized
// template with a participant record and emits a self-contained document —
// print HTML for browser printing, PDF at physical size, or ZPL label
// commands. All targets share the layout package's pixel coordinate space,
// and no output depends on live application state: QR and barcode symbols
// are pre-encoded and embedded.
package printer

import (
	"fmt"
	"strings"

	"credential-service/internal/cache"
	"credential-service/internal/layout"
	"credential-service/internal/models"
	"credential-service/internal/render"
)

// BuildHTML emits the browser print document: fixed physical page size,
// one absolutely positioned box per component, every style inlined and
// every symbol embedded as a data URI. A template with zero components
// still yields the empty bordered surface.
func BuildHTML(t *models.Template, record models.Record) string {
	surface := layout.SurfaceFor(t)
	body := render.Surface(surface, t.Components, record, render.TargetPrint)

	var b strings.Builder
	b.WriteString("<html>\n<head>\n<title>Impressão de Credencial</title>\n<style>\n")
	fmt.Fprintf(&b, "@page { size: %dpx %dpx; margin: 0; }\n", surface.Width, surface.Height)
	b.WriteString("body { margin: 0; padding: 0; }\n</style>\n</head>\n<body>\n")
	b.WriteString(body)
	// The print window is isolated: it prints itself on load and closes,
	// exactly once, with no callback into the application.
	b.WriteString("\n<script>window.onload = function() { window.print(); setTimeout(function() { window.close(); }, 200); };</script>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// ImageRequests lists the images a template needs, at their component box
// sizes, for concurrent preloading ahead of PDF generation.
func ImageRequests(t *models.Template) []cache.ImageRequest {
	var out []cache.ImageRequest
	for _, c := range t.Components {
		if c.Type == models.TypeImage && c.ImageURL != "" {
			out = append(out, cache.ImageRequest{URL: c.ImageURL, Width: c.Width, Height: c.Height})
		}
	}
	return out
}
