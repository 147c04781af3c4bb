package cql2

import "testing"

// Scenario 6: a WKT literal with three coordinates but no explicit
// dimension tag canonicalizes to an inserted Z tag on re-emission.
func TestGeometryCanonicalizesMissingZTag(t *testing.T) {
	expr, err := ParseText(`S_INTERSECTS(geom, POINT (-105.1019 40.1672 4981))`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	got, err := ToText(expr)
	if err != nil {
		t.Fatalf("ToText: %v", err)
	}
	want := `s_intersects(geom, POINT Z(-105.1019 40.1672 4981))`
	if got != want {
		t.Errorf("ToText = %q, want %q", got, want)
	}
}

func TestGeometryPreservesExplicitDimensionTag(t *testing.T) {
	expr, err := ParseText(`S_INTERSECTS(geom, POINT Z(-105.1019 40.1672 4981))`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	got, err := ToText(expr)
	if err != nil {
		t.Fatalf("ToText: %v", err)
	}
	want := `s_intersects(geom, POINT Z(-105.1019 40.1672 4981))`
	if got != want {
		t.Errorf("ToText = %q, want %q", got, want)
	}
}

func TestGeometryTwoDimensionalPointHasNoTag(t *testing.T) {
	expr, err := ParseText(`S_INTERSECTS(geom, POINT (0 0))`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	got, err := ToText(expr)
	if err != nil {
		t.Fatalf("ToText: %v", err)
	}
	want := `s_intersects(geom, POINT(0 0))`
	if got != want {
		t.Errorf("ToText = %q, want %q", got, want)
	}
}
