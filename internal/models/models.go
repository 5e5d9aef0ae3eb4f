package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ============ LAYOUT DOCUMENT MODEL ============

// ComponentType is the closed set of component kinds a template may contain.
// Anything else is treated as unknown and rendered as a visible placeholder.
type ComponentType string

const (
	TypeText    ComponentType = "text"
	TypeField   ComponentType = "field"
	TypeButton  ComponentType = "button"
	TypeQRCode  ComponentType = "qrcode"
	TypeBarcode ComponentType = "barcode"
	TypeImage   ComponentType = "image"
	TypeDivider ComponentType = "divider"
)

// KnownType reports whether t is one of the supported component types.
func KnownType(t ComponentType) bool {
	switch t {
	case TypeText, TypeField, TypeButton, TypeQRCode, TypeBarcode, TypeImage, TypeDivider:
		return true
	}
	return false
}

// Surface is the drawing area a template targets, in device pixels.
type Surface struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Style is the fixed bag of presentation attributes. Every field is
// optional; zero values mean "use the documented default" (black text,
// transparent background, 12px, left alignment, no border). Modeling this
// as a closed struct rather than an open map keeps renderer dispatch
// exhaustive; unknown keys arriving in JSON are dropped at decode time.
type Style struct {
	FontFamily   string `json:"fontFamily,omitempty"`
	FontSize     int    `json:"fontSize,omitempty"`
	Bold         bool   `json:"bold,omitempty"`
	Italic       bool   `json:"italic,omitempty"`
	Underline    bool   `json:"underline,omitempty"`
	Align        string `json:"align,omitempty"` // left, center, right
	Color        string `json:"color,omitempty"`
	Background   string `json:"background,omitempty"`
	BorderWidth  int    `json:"borderWidth,omitempty"`
	BorderColor  string `json:"borderColor,omitempty"`
	BorderRadius int    `json:"borderRadius,omitempty"`
}

// Component is one placed element within a template. Position and size are
// in surface pixel coordinates, top-left origin.
type Component struct {
	ID           string        `json:"id"`
	Type         ComponentType `json:"type"`
	X            int           `json:"x"`
	Y            int           `json:"y"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Text         string        `json:"text,omitempty"`
	FieldBinding string        `json:"fieldBinding,omitempty"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	Style        *Style        `json:"style,omitempty"`
}

// Template is a saved, reusable layout of components for a badge or panel.
// Component order is z-order: later entries draw on top.
type Template struct {
	ID         string      `json:"id"`
	EventID    string      `json:"eventId"`
	Name       string      `json:"name"`
	Components []Component `json:"components"`
	CreatedBy  string      `json:"createdBy,omitempty"`
	CreatedAt  time.Time   `json:"createdAt,omitempty"`
	UpdatedAt  time.Time   `json:"updatedAt,omitempty"`
	IsDefault  bool        `json:"isDefault,omitempty"`

	// Physical badge dimensions; zero for pixel-sized panels.
	WidthCm  float64 `json:"widthCm,omitempty"`
	HeightCm float64 `json:"heightCm,omitempty"`
}

// ============ PARTICIPANTS ============

// Record is the flat field map a component binding resolves against.
type Record map[string]string

// UnmarshalJSON accepts any scalar field value: strings pass through,
// numbers and booleans are coerced to their string form, null becomes the
// empty string. Registration sources emit numeric fields (age, table
// number) and bindings always resolve to strings. Nested values are
// rejected; records are flat.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out := make(Record, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = strconv.FormatBool(val)
		case nil:
			out[k] = ""
		default:
			return fmt.Errorf("field %q: value must be a scalar", k)
		}
	}
	*r = out
	return nil
}

// Participant is one person's registration data for an event. Fields holds
// the flat map consumed by the field resolver; the required "id" entry is
// kept in sync with ID.
type Participant struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Fields    Record    `json:"fields"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Participant statuses.
const (
	StatusPending      = "pending"
	StatusConfirmed    = "confirmed"
	StatusCredentialed = "credentialed"
	StatusCancelled    = "cancelled"
)

// Event owns templates and participants. CustomFields lists extra field
// names offered to the editor's binding dropdown alongside the standard set.
type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CustomFields []string  `json:"customFields,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// ============ REQUEST/RESPONSE STRUCTURES ============

type RenderRequest struct {
	Template      *Template `json:"template,omitempty"`
	TemplateID    string    `json:"templateId,omitempty"`
	ParticipantID string    `json:"participantId,omitempty"`
	Target        string    `json:"target,omitempty"` // editor, preview, print
}

type PrintRequest struct {
	TemplateID    string    `json:"templateId,omitempty"`
	Template      *Template `json:"template,omitempty"`
	EventID       string    `json:"eventId,omitempty"`
	ParticipantID string    `json:"participantId"`
}

type BatchPrintRequest struct {
	TemplateID     string   `json:"templateId"`
	ParticipantIDs []string `json:"participantIds"`
}

type BatchPrintResult struct {
	ParticipantID string `json:"participantId"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	PDFBase64     string `json:"pdfBase64,omitempty"`
}

type BatchPrintResponse struct {
	Success bool               `json:"success"`
	Total   int                `json:"total"`
	Results []BatchPrintResult `json:"results"`
}

type CheckinRequest struct {
	Payload string `json:"payload"`
}

type CheckinResponse struct {
	Participant    *Participant `json:"participant"`
	AlreadyChecked bool         `json:"alreadyChecked"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
