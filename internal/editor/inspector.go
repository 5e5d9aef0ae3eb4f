package editor

import (
	"errors"
	"fmt"

	"credential-service/internal/layout"
	"credential-service/internal/models"
)

// Patch is one property-inspector edit against the selected component.
// Pointer fields distinguish "leave alone" from "set to zero". The style
// patch is shallow-merged over the component's prior style, matching how
// the inspector writes one attribute at a time.
type Patch struct {
	X            *int        `json:"x,omitempty"`
	Y            *int        `json:"y,omitempty"`
	Width        *int        `json:"width,omitempty"`
	Height       *int        `json:"height,omitempty"`
	Text         *string     `json:"text,omitempty"`
	FieldBinding *string     `json:"fieldBinding,omitempty"`
	ImageURL     *string     `json:"imageUrl,omitempty"`
	Style        *StylePatch `json:"style,omitempty"`
}

// StylePatch carries style attribute edits.
type StylePatch struct {
	FontFamily   *string `json:"fontFamily,omitempty"`
	FontSize     *int    `json:"fontSize,omitempty"`
	Bold         *bool   `json:"bold,omitempty"`
	Italic       *bool   `json:"italic,omitempty"`
	Underline    *bool   `json:"underline,omitempty"`
	Align        *string `json:"align,omitempty"`
	Color        *string `json:"color,omitempty"`
	Background   *string `json:"background,omitempty"`
	BorderWidth  *int    `json:"borderWidth,omitempty"`
	BorderColor  *string `json:"borderColor,omitempty"`
	BorderRadius *int    `json:"borderRadius,omitempty"`
}

var ErrInvalidPatch = errors.New("invalid patch")

// validate rejects values that may never enter the template. Rejection
// leaves the component at its last valid state.
func (p Patch) validate() error {
	if p.Width != nil && *p.Width <= 0 {
		return fmt.Errorf("%w: width must be positive", ErrInvalidPatch)
	}
	if p.Height != nil && *p.Height <= 0 {
		return fmt.Errorf("%w: height must be positive", ErrInvalidPatch)
	}
	if p.X != nil && *p.X < 0 {
		return fmt.Errorf("%w: x must be non-negative", ErrInvalidPatch)
	}
	if p.Y != nil && *p.Y < 0 {
		return fmt.Errorf("%w: y must be non-negative", ErrInvalidPatch)
	}
	if p.Style != nil {
		if p.Style.Align != nil {
			switch *p.Style.Align {
			case "left", "center", "right":
			default:
				return fmt.Errorf("%w: unknown alignment %q", ErrInvalidPatch, *p.Style.Align)
			}
		}
		if p.Style.FontSize != nil && *p.Style.FontSize <= 0 {
			return fmt.Errorf("%w: font size must be positive", ErrInvalidPatch)
		}
		if p.Style.BorderWidth != nil && *p.Style.BorderWidth < 0 {
			return fmt.Errorf("%w: border width must be non-negative", ErrInvalidPatch)
		}
		if p.Style.BorderRadius != nil && *p.Style.BorderRadius < 0 {
			return fmt.Errorf("%w: border radius must be non-negative", ErrInvalidPatch)
		}
	}
	return nil
}

// ApplyPatch applies an inspector edit to the selected component through
// the same update contract the canvas uses. Geometry is clamped to the
// surface; id and type are untouchable by construction of layout.Update.
func (s *Session) ApplyPatch(p Patch) error {
	c, ok := s.Selected()
	if !ok {
		return ErrNoSelection
	}
	if err := p.validate(); err != nil {
		return err
	}

	if p.X != nil {
		c.X = *p.X
	}
	if p.Y != nil {
		c.Y = *p.Y
	}
	if p.Width != nil {
		c.Width = *p.Width
	}
	if p.Height != nil {
		c.Height = *p.Height
	}
	if p.Text != nil {
		c.Text = *p.Text
	}
	if p.FieldBinding != nil {
		c.FieldBinding = *p.FieldBinding
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.Style != nil {
		c.Style = mergeStyle(c.Style, *p.Style)
	}

	c = s.clamp(c)
	s.components = layout.Update(s.components, c)
	s.notify()
	return nil
}

func mergeStyle(prior *models.Style, p StylePatch) *models.Style {
	var out models.Style
	if prior != nil {
		out = *prior
	}
	if p.FontFamily != nil {
		out.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		out.FontSize = *p.FontSize
	}
	if p.Bold != nil {
		out.Bold = *p.Bold
	}
	if p.Italic != nil {
		out.Italic = *p.Italic
	}
	if p.Underline != nil {
		out.Underline = *p.Underline
	}
	if p.Align != nil {
		out.Align = *p.Align
	}
	if p.Color != nil {
		out.Color = *p.Color
	}
	if p.Background != nil {
		out.Background = *p.Background
	}
	if p.BorderWidth != nil {
		out.BorderWidth = *p.BorderWidth
	}
	if p.BorderColor != nil {
		out.BorderColor = *p.BorderColor
	}
	if p.BorderRadius != nil {
		out.BorderRadius = *p.BorderRadius
	}
	return &out
}
