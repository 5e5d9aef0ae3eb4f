package editor

import (
	"errors"
	"testing"

	"credential-service/internal/models"
)

var testSurface = models.Surface{Width: 400, Height: 250}

func newTestSession(t *testing.T, changes *int) *Session {
	t.Helper()
	return NewSession(testSurface, nil, func([]models.Component) {
		if changes != nil {
			*changes++
		}
	})
}

func TestAddSelectsNewComponent(t *testing.T) {
	changes := 0
	s := newTestSession(t, &changes)

	c := s.AddComponent(models.TypeText)
	if s.State() != Selected {
		t.Errorf("state = %v, want Selected", s.State())
	}
	sel, ok := s.Selected()
	if !ok || sel.ID != c.ID {
		t.Errorf("selected = %+v, want the added component %s", sel, c.ID)
	}
	if changes != 1 {
		t.Errorf("changes = %d, want 1", changes)
	}
}

func TestSelectUnknownComponent(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.Select("nope"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("Select(nope) = %v, want ErrUnknownTarget", err)
	}
	if s.State() != Idle {
		t.Errorf("failed select must leave state Idle, got %v", s.State())
	}
}

func TestDragLifecycle(t *testing.T) {
	changes := 0
	s := newTestSession(t, &changes)
	c := s.AddComponent(models.TypeText)
	changes = 0

	if err := s.StartDrag(); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	if s.State() != Dragging {
		t.Fatalf("state = %v, want Dragging", s.State())
	}

	// Intermediate positions move the component silently.
	if err := s.DragTo(50, 60); err != nil {
		t.Fatalf("DragTo: %v", err)
	}
	if changes != 0 {
		t.Errorf("intermediate drag reported %d changes, want 0", changes)
	}

	if err := s.EndDrag(100, 120); err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	if s.State() != Selected {
		t.Errorf("state after drag = %v, want Selected", s.State())
	}
	if changes != 1 {
		t.Errorf("drag commit reported %d changes, want 1", changes)
	}

	sel, _ := s.Selected()
	if sel.X != 100 || sel.Y != 120 {
		t.Errorf("committed position = (%d,%d), want (100,120)", sel.X, sel.Y)
	}
	_ = c
}

// A drag-end event that fires twice must leave the template exactly as a
// single firing would.
func TestEndDragReplaysIdempotently(t *testing.T) {
	s := newTestSession(t, nil)
	s.AddComponent(models.TypeText)

	if err := s.StartDrag(); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	if err := s.EndDrag(100, 120); err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	first := s.Components()

	if err := s.EndDrag(100, 120); err != nil {
		t.Fatalf("replayed EndDrag: %v", err)
	}
	second := s.Components()

	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("replay diverged:\nfirst:  %+v\nsecond: %+v", first[0], second[0])
	}
}

func TestDragWithoutSelection(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.StartDrag(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("StartDrag = %v, want ErrNoSelection", err)
	}
	if err := s.DragTo(10, 10); !errors.Is(err, ErrNotDragging) {
		t.Errorf("DragTo = %v, want ErrNotDragging", err)
	}
}

func TestClampToSurface(t *testing.T) {
	s := newTestSession(t, nil)
	c := s.AddComponent(models.TypeText)

	if err := s.StartDrag(); err != nil {
		t.Fatal(err)
	}
	if err := s.EndDrag(10000, -50); err != nil {
		t.Fatal(err)
	}

	sel, _ := s.Selected()
	if sel.X != testSurface.Width-c.Width {
		t.Errorf("x = %d, want clamped to %d", sel.X, testSurface.Width-c.Width)
	}
	if sel.Y != 0 {
		t.Errorf("y = %d, want clamped to 0", sel.Y)
	}
}

func TestClampOversizedComponent(t *testing.T) {
	s := NewSession(models.Surface{Width: 50, Height: 50}, nil, nil)
	s.AddComponent(models.TypeBarcode) // wider than the surface

	sel, _ := s.Selected()
	if sel.X != 0 || sel.Y != 0 {
		t.Errorf("oversized component at (%d,%d), want pinned to origin", sel.X, sel.Y)
	}
}

func TestDeleteSelected(t *testing.T) {
	changes := 0
	s := newTestSession(t, &changes)
	a := s.AddComponent(models.TypeText)
	b := s.AddComponent(models.TypeField)
	changes = 0

	if err := s.Select(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSelected(); err != nil {
		t.Fatal(err)
	}

	if s.State() != Idle {
		t.Errorf("state after delete = %v, want Idle", s.State())
	}
	if _, ok := s.Selected(); ok {
		t.Error("selection must clear after delete")
	}
	if changes != 1 {
		t.Errorf("delete reported %d changes, want 1", changes)
	}

	left := s.Components()
	if len(left) != 1 || left[0].ID != b.ID {
		t.Errorf("remaining components = %+v, want only %s", left, b.ID)
	}

	if err := s.DeleteSelected(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("delete with nothing selected = %v, want ErrNoSelection", err)
	}
}

func TestApplyPatch(t *testing.T) {
	changes := 0
	s := newTestSession(t, &changes)
	s.AddComponent(models.TypeField)
	changes = 0

	binding := "empresa"
	size := 18
	bold := true
	if err := s.ApplyPatch(Patch{
		FieldBinding: &binding,
		Style:        &StylePatch{FontSize: &size, Bold: &bold},
	}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}

	sel, _ := s.Selected()
	if sel.FieldBinding != "empresa" {
		t.Errorf("binding = %q, want empresa", sel.FieldBinding)
	}
	if sel.Style == nil || sel.Style.FontSize != 18 || !sel.Style.Bold {
		t.Errorf("style = %+v, want 18px bold", sel.Style)
	}
	if changes != 1 {
		t.Errorf("patch reported %d changes, want 1", changes)
	}
}

func TestStylePatchMergesOverPrior(t *testing.T) {
	s := newTestSession(t, nil)
	s.AddComponent(models.TypeText) // default style: centered 14px

	color := "#ff0000"
	if err := s.ApplyPatch(Patch{Style: &StylePatch{Color: &color}}); err != nil {
		t.Fatal(err)
	}

	sel, _ := s.Selected()
	if sel.Style.Color != "#ff0000" {
		t.Errorf("color = %q, want #ff0000", sel.Style.Color)
	}
	if sel.Style.FontSize != 14 || sel.Style.Align != "center" {
		t.Errorf("patch clobbered prior style: %+v", sel.Style)
	}
}

func TestPatchValidation(t *testing.T) {
	zero := 0
	negative := -5
	badAlign := "justify"
	tests := []struct {
		name  string
		patch Patch
	}{
		{name: "zero width", patch: Patch{Width: &zero}},
		{name: "negative height", patch: Patch{Height: &negative}},
		{name: "negative x", patch: Patch{X: &negative}},
		{name: "unknown align", patch: Patch{Style: &StylePatch{Align: &badAlign}}},
		{name: "zero font size", patch: Patch{Style: &StylePatch{FontSize: &zero}}},
		{name: "negative border width", patch: Patch{Style: &StylePatch{BorderWidth: &negative}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := 0
			s := newTestSession(t, &changes)
			s.AddComponent(models.TypeText)
			before, _ := s.Selected()
			changes = 0

			if err := s.ApplyPatch(tt.patch); !errors.Is(err, ErrInvalidPatch) {
				t.Fatalf("ApplyPatch = %v, want ErrInvalidPatch", err)
			}
			after, _ := s.Selected()
			if before != after {
				t.Errorf("rejected patch mutated component:\nbefore: %+v\nafter:  %+v", before, after)
			}
			if changes != 0 {
				t.Errorf("rejected patch reported %d changes, want 0", changes)
			}
		})
	}
}

func TestPatchWithoutSelection(t *testing.T) {
	s := newTestSession(t, nil)
	text := "x"
	if err := s.ApplyPatch(Patch{Text: &text}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("ApplyPatch = %v, want ErrNoSelection", err)
	}
}

func TestPatchGeometryIsClamped(t *testing.T) {
	s := newTestSession(t, nil)
	s.AddComponent(models.TypeText)

	x := 100000
	if err := s.ApplyPatch(Patch{X: &x}); err != nil {
		t.Fatal(err)
	}
	sel, _ := s.Selected()
	if sel.X+sel.Width > testSurface.Width {
		t.Errorf("patched component escapes surface: x=%d width=%d", sel.X, sel.Width)
	}
}

func TestSaveFlag(t *testing.T) {
	s := newTestSession(t, nil)

	if !s.BeginSave() {
		t.Fatal("first BeginSave must succeed")
	}
	if s.BeginSave() {
		t.Error("overlapping BeginSave must be refused")
	}
	s.FinishSave()
	if !s.BeginSave() {
		t.Error("BeginSave after FinishSave must succeed")
	}
}

func TestSessionCopiesInput(t *testing.T) {
	input := []models.Component{{ID: "c1", Type: models.TypeText, Width: 10, Height: 10}}
	s := NewSession(testSurface, input, nil)

	input[0].X = 999
	got := s.Components()
	if got[0].X == 999 {
		t.Error("session must not alias the caller's slice")
	}
}
