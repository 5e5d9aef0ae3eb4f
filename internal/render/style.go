package render

import (
	"fmt"
	"strings"

	"credential-service/internal/models"
)

// Style defaults applied wherever the template left a field unset. Missing
// style data must never produce invisible or unstyled output, and all
// render targets must agree on what "unset" looks like.
const (
	DefaultFontFamily = "Arial"
	DefaultFontSize   = 12
	DefaultAlign      = "left"
	DefaultColor      = "#000000"
	DefaultBackground = "transparent"
)

// Effective returns the style with every unset field replaced by its
// documented default. The input is not modified.
func Effective(s *models.Style) models.Style {
	var out models.Style
	if s != nil {
		out = *s
	}
	if out.FontFamily == "" {
		out.FontFamily = DefaultFontFamily
	}
	if out.FontSize <= 0 {
		out.FontSize = DefaultFontSize
	}
	if out.Align == "" {
		out.Align = DefaultAlign
	}
	if out.Color == "" {
		out.Color = DefaultColor
	}
	if out.Background == "" {
		out.Background = DefaultBackground
	}
	return out
}

// StyleDecls is the single style transform shared by the editor, preview
// and print targets: it turns a style bag into inline CSS declarations.
// Declaration order is fixed so identical styles always produce identical
// markup, which is what makes the three targets provably drift-free.
func StyleDecls(s *models.Style) string {
	eff := Effective(s)

	var b strings.Builder
	fmt.Fprintf(&b, "color:%s;", eff.Color)
	fmt.Fprintf(&b, "font-size:%dpx;", eff.FontSize)
	fmt.Fprintf(&b, "font-family:%s;", eff.FontFamily)
	fmt.Fprintf(&b, "text-align:%s;", eff.Align)
	if eff.Bold {
		b.WriteString("font-weight:bold;")
	} else {
		b.WriteString("font-weight:normal;")
	}
	if eff.Italic {
		b.WriteString("font-style:italic;")
	}
	if eff.Underline {
		b.WriteString("text-decoration:underline;")
	}
	fmt.Fprintf(&b, "background-color:%s;", eff.Background)
	if eff.BorderWidth > 0 {
		borderColor := eff.BorderColor
		if borderColor == "" {
			borderColor = DefaultColor
		}
		fmt.Fprintf(&b, "border:%dpx solid %s;", eff.BorderWidth, borderColor)
	}
	if eff.BorderRadius > 0 {
		fmt.Fprintf(&b, "border-radius:%dpx;", eff.BorderRadius)
	}
	return b.String()
}

// boxDecls positions a component absolutely within its surface.
func boxDecls(c models.Component) string {
	return fmt.Sprintf("position:absolute;top:%dpx;left:%dpx;width:%dpx;height:%dpx;", c.Y, c.X, c.Width, c.Height)
}

// HexToRGB parses a #rrggbb color, falling back to black on anything else.
func HexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
