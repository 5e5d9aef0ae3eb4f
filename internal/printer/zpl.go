package printer

import (
	"fmt"
	"strings"

	"credential-service/internal/layout"
	"credential-service/internal/models"
	"credential-service/internal/render"
	"credential-service/internal/resolve"
)

// BuildZPL emits label-printer commands for the template + record pair.
// ZPL dots at 203 dpi line up one-to-one with surface pixels, so component
// geometry translates directly with no rescaling.
func BuildZPL(t *models.Template, record models.Record) string {
	surface := layout.SurfaceFor(t)

	var b strings.Builder
	b.WriteString("^XA\n")
	fmt.Fprintf(&b, "^PW%d\n^LL%d\n", surface.Width, surface.Height)

	for _, c := range t.Components {
		writeZPLComponent(&b, c, record)
	}

	b.WriteString("^XZ\n")
	return b.String()
}

func writeZPLComponent(b *strings.Builder, c models.Component, record models.Record) {
	eff := render.Effective(c.Style)

	switch c.Type {
	case models.TypeText, models.TypeField, models.TypeButton:
		value := resolve.Resolve(c, record)
		if value == "" {
			return
		}
		align := "L"
		switch eff.Align {
		case "center":
			align = "C"
		case "right":
			align = "R"
		}
		if c.Type == models.TypeButton {
			align = "C"
		}
		fmt.Fprintf(b, "^FO%d,%d^A0N,%d,%d^FB%d,1,0,%s,0^FD%s^FS\n",
			c.X, c.Y, eff.FontSize, eff.FontSize, c.Width, align, zplEscape(value))

	case models.TypeBarcode:
		value := resolve.Resolve(c, record)
		if value == "" {
			return
		}
		// ^BC...,N,N: Code 128 with the interpretation line suppressed —
		// the human-readable value is never printed under the bars.
		fmt.Fprintf(b, "^FO%d,%d^BY2^BCN,%d,N,N,N^FD%s^FS\n",
			c.X, c.Y, c.Height, zplEscape(value))

	case models.TypeQRCode:
		payload := resolve.QRPayload(record)
		if payload == "" {
			return
		}
		mag := magnification(c, payload)
		fmt.Fprintf(b, "^FO%d,%d^BQN,2,%d^FDLA,%s^FS\n", c.X, c.Y, mag, zplEscape(payload))

	case models.TypeDivider:
		thickness := c.Height
		if c.Width < thickness {
			thickness = c.Width
		}
		fmt.Fprintf(b, "^FO%d,%d^GB%d,%d,%d^FS\n", c.X, c.Y, c.Width, c.Height, thickness)

	case models.TypeImage:
		// Raster upload is printer-specific; emit the component's outline
		// so the layout stays inspectable on the label.
		fmt.Fprintf(b, "^FO%d,%d^GB%d,%d,1^FS\n", c.X, c.Y, c.Width, c.Height)

	default:
		fmt.Fprintf(b, "^FO%d,%d^GB%d,%d,1^FS\n", c.X, c.Y, c.Width, c.Height)
	}
}

// magnification picks a QR module size that keeps the symbol near the
// component box. ZPL model 2 symbols grow with payload length; 1-10 is the
// valid magnification range.
func magnification(c models.Component, payload string) int {
	side := c.Width
	if c.Height < side {
		side = c.Height
	}
	// Rough module count for a mid-size version 2 symbol.
	modules := 33 + len(payload)/24
	mag := side / modules
	if mag < 1 {
		mag = 1
	}
	if mag > 10 {
		mag = 10
	}
	return mag
}

// zplEscape strips ZPL control characters from field data.
func zplEscape(s string) string {
	s = strings.ReplaceAll(s, "^", " ")
	s = strings.ReplaceAll(s, "~", " ")
	return s
}
