package cql2

import "testing"

// Scenario 2: arithmetic reduction with a property substitution.
func TestReduceArithmeticWithProperty(t *testing.T) {
	expr, err := ParseText(`"eo:cloud_cover" + 10`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	record := map[string]any{"properties": map[string]any{"eo:cloud_cover": float64(10)}}
	reduced, err := expr.Reduce(record)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	f, ok := reduced.(Float)
	if !ok {
		t.Fatalf("reduced to %T, want Float", reduced)
	}
	if f != 20 {
		t.Errorf("reduced = %v, want 20", f)
	}
}

// Scenario 3: boolean idempotence/dedup across a record without the
// referenced property.
func TestReduceBooleanDedup(t *testing.T) {
	expr, err := ParseText(`(bork=1) and (bork=1) and (bork=1 and true)`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	reduced, err := expr.Reduce(map[string]any{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	got, err := ToText(reduced)
	if err != nil {
		t.Fatalf("ToText: %v", err)
	}
	want := `(bork = 1)`
	if got != want {
		t.Errorf("ToText(reduced) = %q, want %q", got, want)
	}
}

func TestReduceIsIdempotent(t *testing.T) {
	expr, err := ParseText(`(bork=1) and (bork=1) and (bork=1 and true)`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	record := map[string]any{}
	once, err := expr.Reduce(record)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	twice, err := once.Reduce(record)
	if err != nil {
		t.Fatalf("Reduce (again): %v", err)
	}
	onceText, _ := ToText(once)
	twiceText, _ := ToText(twice)
	if onceText != twiceText {
		t.Errorf("reduce not idempotent: %q != %q", onceText, twiceText)
	}
}

func TestMatchesAndFilter(t *testing.T) {
	expr, err := ParseText(`foo >= 10`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	records := []any{
		map[string]any{"properties": map[string]any{"foo": float64(5)}},
		map[string]any{"properties": map[string]any{"foo": float64(15)}},
		map[string]any{"properties": map[string]any{"foo": float64(10)}},
	}
	kept, err := Filter(expr, records)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(kept) != 2 {
		t.Fatalf("Filter returned %d records, want 2", len(kept))
	}
}

func TestAddCombinesWithTopLevelAnd(t *testing.T) {
	a := NewOperation("=", &Property{Name: "a"}, Float(1))
	b := NewOperation("=", &Property{Name: "b"}, Float(2))
	combined := Add(a, b)

	aText, _ := ToText(a)
	bText, _ := ToText(b)
	combinedText, err := ToText(combined)
	if err != nil {
		t.Fatalf("ToText: %v", err)
	}
	if !containsAll(combinedText, aText, bText, " AND ") {
		t.Errorf("Add result %q does not join %q and %q with AND", combinedText, aText, bText)
	}
}

func containsAll(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
