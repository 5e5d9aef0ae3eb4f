// Package resolve maps component bindings to display values and owns the
// QR payload convention used at print and check-in time.
package resolve

import (
	"encoding/json"

	"credential-service/internal/models"
)

// Resolve returns the literal value a component displays against a record.
// It never fails: a bound field missing from the record resolves to the
// empty string, an unbound component falls back to its own text.
func Resolve(c models.Component, record models.Record) string {
	if c.FieldBinding != "" {
		if record == nil {
			return ""
		}
		return record[c.FieldBinding]
	}
	return c.Text
}

// Placeholder is what the interactive editor shows for a bound component
// when no sample record is loaded.
func Placeholder(c models.Component) string {
	if c.FieldBinding == "" {
		return c.Text
	}
	return "{" + c.FieldBinding + "}"
}

// QRPayload serializes the whole record to the canonical QR payload.
// encoding/json writes map keys in sorted order, so the payload is
// deterministic for a given record. An empty record yields an empty
// payload, which downstream renders as an empty placeholder box.
func QRPayload(record models.Record) string {
	if len(record) == 0 {
		return ""
	}
	b, err := json.Marshal(record)
	if err != nil {
		return ""
	}
	return string(b)
}

// ParseScanPayload extracts the participant id from a scanned QR or
// barcode payload. JSON payloads (the QR convention) yield their "id"
// field; anything else is taken as a bare id, which is what barcodes carry.
func ParseScanPayload(payload string) string {
	var rec map[string]any
	if err := json.Unmarshal([]byte(payload), &rec); err == nil {
		if id, ok := rec["id"].(string); ok && id != "" {
			return id
		}
	}
	return payload
}
