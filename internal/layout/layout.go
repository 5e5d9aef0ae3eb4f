// Package layout owns the template document model: surface sizing,
// component construction with per-type defaults, and the immutable
// component-list operations the editor and inspector mutate through.
package layout

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"credential-service/internal/models"

	"github.com/oklog/ulid/v2"
)

// Print resolution for physical badges. 203.2 dpi is the thermal label
// standard (8 dots per millimeter), which makes the centimeter conversion
// exact: 80 pixels per centimeter. Every render target derives pixel
// geometry from this same constant.
const (
	DPI         = 203.2
	PixelsPerCm = DPI / 2.54 // 80
)

// DefaultBadgeSurface matches the editor's on-screen badge canvas.
var DefaultBadgeSurface = models.Surface{Width: 400, Height: 250}

var (
	entropyMu sync.Mutex
	entropy   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewID returns a new ULID string. IDs are opaque and stable for the
// lifetime of the component or template that carries them.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// SurfaceFromCm converts physical badge dimensions to the pixel surface
// shared by editor, preview, print and label output. 8cm x 3cm resolves
// to 640x240.
func SurfaceFromCm(widthCm, heightCm float64) (models.Surface, error) {
	if widthCm <= 0 || heightCm <= 0 {
		return models.Surface{}, fmt.Errorf("surface dimensions must be positive, got %.2fcm x %.2fcm", widthCm, heightCm)
	}
	return models.Surface{
		Width:  int(math.Round(widthCm * PixelsPerCm)),
		Height: int(math.Round(heightCm * PixelsPerCm)),
	}, nil
}

// SurfaceFor picks the surface a template targets: physical dimensions when
// present (badges), the default canvas otherwise (panels and unsized badges).
func SurfaceFor(t *models.Template) models.Surface {
	if t != nil && t.WidthCm > 0 && t.HeightCm > 0 {
		s, err := SurfaceFromCm(t.WidthCm, t.HeightCm)
		if err == nil {
			return s
		}
	}
	return DefaultBadgeSurface
}

// NewComponent constructs a component of the given type with sensible
// defaults: text starts centered at 14px, QR codes default to a square
// sized for scan reliability, barcodes bind to the participant id.
func NewComponent(t models.ComponentType) models.Component {
	c := models.Component{
		ID:     NewID(),
		Type:   t,
		X:      10,
		Y:      10,
		Width:  100,
		Height: 30,
	}

	switch t {
	case models.TypeText:
		c.Text = "Texto"
		c.Style = &models.Style{Color: "#000000", FontSize: 14, Align: "center"}
	case models.TypeButton:
		c.Text = "Botão"
		c.Style = &models.Style{Color: "#000000", FontSize: 14, Align: "center"}
	case models.TypeField:
		c.Style = &models.Style{Color: "#000000", FontSize: 14, Align: "center"}
	case models.TypeQRCode:
		c.Width = 60
		c.Height = 60
	case models.TypeBarcode:
		c.Width = 200
		c.Height = 40
		c.FieldBinding = "id"
	case models.TypeImage:
		c.Width = 80
		c.Height = 80
	case models.TypeDivider:
		c.Height = 4
		c.Style = &models.Style{Background: "#f0f0f0"}
	}

	return c
}

// Add appends c and returns a new list; the input is never mutated.
func Add(components []models.Component, c models.Component) []models.Component {
	out := make([]models.Component, 0, len(components)+1)
	out = append(out, components...)
	return append(out, c)
}

// Update replaces the component whose id matches, preserving list order.
// The stored id and type always win over whatever the update carries, so a
// patch can never re-identify or re-type a component.
func Update(components []models.Component, c models.Component) []models.Component {
	out := make([]models.Component, len(components))
	for i, existing := range components {
		if existing.ID == c.ID {
			c.ID = existing.ID
			c.Type = existing.Type
			out[i] = c
		} else {
			out[i] = existing
		}
	}
	return out
}

// Remove filters out the component with the given id, preserving the order
// of the rest.
func Remove(components []models.Component, id string) []models.Component {
	out := make([]models.Component, 0, len(components))
	for _, c := range components {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the component with the given id.
func Find(components []models.Component, id string) (models.Component, bool) {
	for _, c := range components {
		if c.ID == id {
			return c, true
		}
	}
	return models.Component{}, false
}

// StandardFields are the participant fields every event offers for binding,
// before event-specific custom fields.
var StandardFields = []string{"nome", "empresa", "email", "telefone", "categoria", "id"}

// StarterComponents seeds a new badge template with the stock layout:
// a barcode on the participant id, the event title, name and company
// fields, a QR code and a category pill.
func StarterComponents(eventName string) []models.Component {
	return []models.Component{
		{
			ID: NewID(), Type: models.TypeBarcode,
			X: 20, Y: 20, Width: 200, Height: 40,
			FieldBinding: "id",
		},
		{
			ID: NewID(), Type: models.TypeText,
			X: 20, Y: 70, Width: 360, Height: 40,
			Text:  eventName,
			Style: &models.Style{Color: "#063a80", FontSize: 16, Align: "center", Bold: true},
		},
		{
			ID: NewID(), Type: models.TypeField,
			X: 20, Y: 120, Width: 360, Height: 40,
			FieldBinding: "nome",
			Style:        &models.Style{Color: "#000000", FontSize: 18, Align: "center", Bold: true},
		},
		{
			ID: NewID(), Type: models.TypeField,
			X: 20, Y: 170, Width: 360, Height: 30,
			FieldBinding: "empresa",
			Style:        &models.Style{Color: "#666666", FontSize: 14, Align: "center"},
		},
		{
			ID: NewID(), Type: models.TypeQRCode,
			X: 20, Y: 210, Width: 60, Height: 60,
		},
		{
			ID: NewID(), Type: models.TypeField,
			X: 90, Y: 220, Width: 290, Height: 20,
			FieldBinding: "categoria",
			Style: &models.Style{
				Color: "#ffffff", FontSize: 12, Align: "center",
				Background: "#ff914d", BorderRadius: 4,
			},
		},
	}
}
