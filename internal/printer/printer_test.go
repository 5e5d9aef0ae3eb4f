package printer

import (
	"bytes"
	"compress/zlib"
	"io"
	"strings"
	"testing"

	"credential-service/internal/models"
)

func labelTemplate() *models.Template {
	return &models.Template{
		ID:       "tpl1",
		EventID:  "ev1",
		Name:     "Etiqueta",
		WidthCm:  8,
		HeightCm: 3,
		Components: []models.Component{
			{ID: "c1", Type: models.TypeField, X: 10, Y: 10, Width: 300, Height: 40, FieldBinding: "nome",
				Style: &models.Style{FontSize: 24, Bold: true}},
			{ID: "c2", Type: models.TypeBarcode, X: 10, Y: 60, Width: 300, Height: 50, FieldBinding: "id"},
			{ID: "c3", Type: models.TypeQRCode, X: 350, Y: 10, Width: 100, Height: 100},
		},
	}
}

func testRecord() models.Record {
	return models.Record{"id": "P12345", "nome": "João Silva", "categoria": "VIP"}
}

func TestBuildHTMLPageSize(t *testing.T) {
	html := BuildHTML(labelTemplate(), testRecord())

	// 8cm x 3cm at 203.2 dpi.
	if !strings.Contains(html, "@page { size: 640px 240px; margin: 0; }") {
		t.Errorf("print HTML missing physical page rule:\n%s", html)
	}
	if !strings.Contains(html, "window.print()") {
		t.Error("print HTML must print itself on load")
	}
	if !strings.Contains(html, "window.close()") {
		t.Error("print HTML must close its window after printing")
	}
	if !strings.Contains(html, "João Silva") {
		t.Error("print HTML missing resolved field value")
	}
	if !strings.Contains(html, "data:image/png;base64,") {
		t.Error("print HTML must embed symbols as data URIs")
	}
}

func TestBuildHTMLSelfContained(t *testing.T) {
	html := BuildHTML(labelTemplate(), testRecord())
	if strings.Contains(html, "http://") || strings.Contains(html, "https://") {
		t.Errorf("print HTML must not reference external resources:\n%s", html)
	}
}

func TestBuildHTMLEmptyTemplate(t *testing.T) {
	tpl := &models.Template{WidthCm: 8, HeightCm: 3}
	html := BuildHTML(tpl, nil)
	if !strings.Contains(html, "width:640px;height:240px;") {
		t.Errorf("empty template must still yield the sized surface:\n%s", html)
	}
}

func TestBuildPDF(t *testing.T) {
	pdf, err := BuildPDF(labelTemplate(), testRecord())
	if err != nil {
		t.Fatalf("BuildPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not start with the PDF magic, got %q", pdf[:8])
	}
	if len(pdf) < 1000 {
		t.Errorf("pdf suspiciously small: %d bytes", len(pdf))
	}
}

func TestBuildPDFEmptyRecord(t *testing.T) {
	// No record: symbols degrade to empty, the document still builds.
	pdf, err := BuildPDF(labelTemplate(), nil)
	if err != nil {
		t.Fatalf("BuildPDF with nil record: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

// Core PDF fonts are cp1252; accented values must be translated before they
// reach a text-show operator or the PDF draws them as two garbled glyphs
// while the HTML targets draw them correctly.
func TestBuildPDFAccentedText(t *testing.T) {
	tpl := &models.Template{
		WidthCm:  8,
		HeightCm: 3,
		Components: []models.Component{
			{ID: "c1", Type: models.TypeField, X: 10, Y: 10, Width: 300, Height: 40, FieldBinding: "nome"},
		},
	}
	pdf, err := BuildPDF(tpl, models.Record{"nome": "João"})
	if err != nil {
		t.Fatalf("BuildPDF: %v", err)
	}

	streams := inflatedStreams(pdf)
	if bytes.Contains(streams, []byte("João")) {
		t.Error("raw UTF-8 text leaked into the content stream")
	}
	if !bytes.Contains(streams, []byte("Jo\xe3o")) {
		t.Error("cp1252-translated text missing from the content stream")
	}
}

// inflatedStreams concatenates every stream object in the PDF, decompressed
// where FlateDecode applies.
func inflatedStreams(pdf []byte) []byte {
	var out bytes.Buffer
	rest := pdf
	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		rest = bytes.TrimLeft(rest[i+len("stream"):], "\r\n")
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		data := rest[:end]
		if r, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
			io.Copy(&out, r)
			r.Close()
		} else {
			out.Write(data)
		}
		rest = rest[end+len("endstream"):]
	}
	return out.Bytes()
}

func TestBuildPDFUnknownComponent(t *testing.T) {
	tpl := labelTemplate()
	tpl.Components = append(tpl.Components, models.Component{
		ID: "x", Type: "holograma", X: 10, Y: 150, Width: 50, Height: 50,
	})
	if _, err := BuildPDF(tpl, testRecord()); err != nil {
		t.Errorf("unknown component must degrade, not fail: %v", err)
	}
}

func TestBuildZPL(t *testing.T) {
	zpl := BuildZPL(labelTemplate(), testRecord())

	if !strings.HasPrefix(zpl, "^XA") || !strings.Contains(zpl, "^XZ") {
		t.Errorf("zpl missing label frame:\n%s", zpl)
	}
	if !strings.Contains(zpl, "^PW640") || !strings.Contains(zpl, "^LL240") {
		t.Errorf("zpl missing label dimensions:\n%s", zpl)
	}
	if !strings.Contains(zpl, "^FDJoão Silva^FS") {
		t.Errorf("zpl missing text field:\n%s", zpl)
	}
	// Code 128 with the interpretation line off.
	if !strings.Contains(zpl, "^BCN,50,N,N,N^FDP12345^FS") {
		t.Errorf("zpl missing barcode command:\n%s", zpl)
	}
	if !strings.Contains(zpl, "^BQN,2,") {
		t.Errorf("zpl missing qr command:\n%s", zpl)
	}
}

func TestBuildZPLEmptyValuesSkipped(t *testing.T) {
	zpl := BuildZPL(labelTemplate(), nil)
	if strings.Contains(zpl, "^BCN") {
		t.Errorf("barcode with no value must be omitted:\n%s", zpl)
	}
	if strings.Contains(zpl, "^BQN") {
		t.Errorf("qr with no payload must be omitted:\n%s", zpl)
	}
	if !strings.HasPrefix(zpl, "^XA") {
		t.Error("label frame must survive an empty record")
	}
}

func TestZPLEscape(t *testing.T) {
	zpl := BuildZPL(&models.Template{
		WidthCm: 8, HeightCm: 3,
		Components: []models.Component{
			{ID: "c1", Type: models.TypeText, X: 0, Y: 0, Width: 300, Height: 40, Text: "a^b~c"},
		},
	}, nil)
	if strings.Contains(zpl, "^FDa^b") || strings.Contains(zpl, "~c") {
		t.Errorf("control characters must be stripped from field data:\n%s", zpl)
	}
	if !strings.Contains(zpl, "^FDa b c^FS") {
		t.Errorf("escaped text missing:\n%s", zpl)
	}
}

func TestImageRequests(t *testing.T) {
	tpl := labelTemplate()
	tpl.Components = append(tpl.Components,
		models.Component{ID: "i1", Type: models.TypeImage, Width: 80, Height: 80, ImageURL: "https://example.com/logo.png"},
		models.Component{ID: "i2", Type: models.TypeImage, Width: 80, Height: 80}, // no URL
	)

	reqs := ImageRequests(tpl)
	if len(reqs) != 1 {
		t.Fatalf("len = %d, want 1", len(reqs))
	}
	if reqs[0].URL != "https://example.com/logo.png" || reqs[0].Width != 80 || reqs[0].Height != 80 {
		t.Errorf("request = %+v", reqs[0])
	}
}
