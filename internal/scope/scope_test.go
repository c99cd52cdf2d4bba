package scope

import "testing"

func TestCatalogConstrainability(t *testing.T) {
	for _, s := range All() {
		if !IsValid(s) {
			t.Fatalf("scope %s missing from catalog", s)
		}
	}
	if SurveysRead.Constrainable() {
		t.Fatalf("read scope must not be constrainable")
	}
	if !HydroDownload.Constrainable() {
		t.Fatalf("hydro download must be constrainable")
	}
	if got := HydroDownload.Dimension(); got != "survey" {
		t.Fatalf("unexpected dimension: %q", got)
	}
	if got := DownloadAdmin.Dimension(); got != "" {
		t.Fatalf("unconstrainable scope must have empty dimension, got %q", got)
	}
}

func TestUnknownScope(t *testing.T) {
	if IsValid(Scope("sadco.nope")) {
		t.Fatalf("unknown scope reported valid")
	}
	if Scope("sadco.nope").Constraint() != ConstraintNone {
		t.Fatalf("unknown scope must default to unconstrainable")
	}
}
