// Package render turns layout components into visual output. One style
// transform feeds every target, so the live editor, the on-screen preview
// and the print document cannot drift apart.
package render

import (
	"fmt"
	"html"
	"strings"

	"credential-service/internal/models"
	"credential-service/internal/resolve"
)

// Target selects the rendering context.
type Target string

const (
	// TargetEditor is the interactive canvas: bound fields with no sample
	// record show their {binding} placeholder and buttons get a pointer
	// affordance.
	TargetEditor Target = "editor"
	// TargetPreview is the static on-screen preview.
	TargetPreview Target = "preview"
	// TargetPrint is the self-contained print document.
	TargetPrint Target = "print"
)

// ParseTarget maps a request string to a target, defaulting to preview.
func ParseTarget(s string) Target {
	switch Target(s) {
	case TargetEditor, TargetPreview, TargetPrint:
		return Target(s)
	default:
		return TargetPreview
	}
}

// resolvedValue applies the resolver with the editor's placeholder rule:
// only the interactive canvas shows {binding} for unresolvable fields.
func resolvedValue(c models.Component, record models.Record, target Target) string {
	if target == TargetEditor && c.FieldBinding != "" && record == nil {
		return resolve.Placeholder(c)
	}
	return resolve.Resolve(c, record)
}

func justifyFor(c models.Component, s models.Style) string {
	if c.Type == models.TypeButton {
		return "center"
	}
	switch s.Align {
	case "center":
		return "center"
	case "right":
		return "flex-end"
	default:
		return "flex-start"
	}
}

// Component renders one component as an absolutely positioned box. Failures
// inside a component (bad encodes, unknown types, missing data) degrade to
// visible or empty placeholders; this function never fails the document.
func Component(c models.Component, record models.Record, target Target) string {
	eff := Effective(c.Style)

	var box strings.Builder
	box.WriteString(boxDecls(c))
	box.WriteString(StyleDecls(c.Style))
	fmt.Fprintf(&box, "display:flex;align-items:center;justify-content:%s;overflow:hidden;", justifyFor(c, eff))

	content := ""
	switch c.Type {
	case models.TypeText, models.TypeField:
		content = html.EscapeString(resolvedValue(c, record, target))

	case models.TypeButton:
		if target == TargetEditor {
			box.WriteString("cursor:pointer;")
		}
		content = html.EscapeString(resolvedValue(c, record, target))

	case models.TypeQRCode:
		content = qrContent(c, record)

	case models.TypeBarcode:
		content = barcodeContent(c, record)

	case models.TypeImage:
		content = imageContent(c)

	case models.TypeDivider:
		// A filled separator with no content. Dividers default to a light
		// fill rather than transparent, or they would be invisible.
		if eff.Background == DefaultBackground {
			box.WriteString("background-color:#f0f0f0;")
		}

	default:
		content = "Componente desconhecido"
	}

	return fmt.Sprintf(`<div data-component-id=%q style=%q>%s</div>`, c.ID, box.String(), content)
}

func qrContent(c models.Component, record models.Record) string {
	payload := resolve.QRPayload(record)
	if payload == "" {
		return ""
	}
	size := c.Width
	if c.Height < size {
		size = c.Height
	}
	png, err := EncodeQRPNG(payload, size)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`<img src=%q width="%d" height="%d" alt=""/>`, DataURI(png), size, size)
}

func barcodeContent(c models.Component, record models.Record) string {
	value := resolve.Resolve(c, record)
	if value == "" {
		return ""
	}
	png, err := EncodeBarcodePNG(value, c.Width, c.Height)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`<img src=%q width="%d" height="%d" alt=""/>`, DataURI(png), c.Width, c.Height)
}

func imageContent(c models.Component) string {
	if c.ImageURL == "" {
		return `<div style="width:100%;height:100%;display:flex;align-items:center;justify-content:center;background-color:#f3f4f6;color:#9ca3af;font-size:11px;">Imagem</div>`
	}
	return fmt.Sprintf(`<img src=%q style="max-width:100%%;max-height:100%%;object-fit:contain;margin:0 auto;" alt=""/>`, c.ImageURL)
}

// Surface renders the full component list inside a fixed-size container, in
// template order (later components draw on top). A template with zero
// components still yields the bordered empty surface.
func Surface(surface models.Surface, components []models.Component, record models.Record, target Target) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		`<div class="credential-surface" style="position:relative;width:%dpx;height:%dpx;background:#ffffff;border:1px solid #d1d5db;">`,
		surface.Width, surface.Height)
	for _, c := range components {
		b.WriteString(Component(c, record, target))
	}
	b.WriteString(`</div>`)
	return b.String()
}
