package cql2

import "testing"

func TestTextRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"quoted identifier with colon", `"landsat:scene_id" = 'LC82030282019133LGN00'`},
		{"and/or precedence", `foo >= 1 AND bar = 'baz'`},
		{"not with parens", `NOT (foo = 1 OR bar = 2)`},
		{"between", `foo BETWEEN 1 AND 10`},
		{"like", `foo LIKE 'abc%'`},
		{"in list", `foo IN (1, 2, 3)`},
		{"spatial predicate", `S_INTERSECTS(geom, POINT(0 0))`},
		{"isnull", `foo IS NULL`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseText(tt.text)
			if err != nil {
				t.Fatalf("ParseText(%q): %v", tt.text, err)
			}
			text1, err := ToText(expr)
			if err != nil {
				t.Fatalf("ToText: %v", err)
			}
			expr2, err := ParseText(text1)
			if err != nil {
				t.Fatalf("re-ParseText(%q): %v", text1, err)
			}
			text2, err := ToText(expr2)
			if err != nil {
				t.Fatalf("re-ToText: %v", err)
			}
			if text1 != text2 {
				t.Errorf("text not stable under round trip: %q != %q", text1, text2)
			}
		})
	}
}

func TestColonPropertyQuotedInCanonicalText(t *testing.T) {
	expr, err := ParseText(`"landsat:scene_id" = 'LC82030282019133LGN00'`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	got, err := ToText(expr)
	if err != nil {
		t.Fatalf("ToText: %v", err)
	}
	want := `("landsat:scene_id" = 'LC82030282019133LGN00')`
	if got != want {
		t.Errorf("ToText() = %q, want %q", got, want)
	}
}

func TestJSONTextCrossRoundTrip(t *testing.T) {
	expr := NewOperation("and",
		NewOperation(">=", &Property{Name: "foo"}, Float(1)),
		NewOperation("=", &Property{Name: "bar"}, Literal("baz")),
	)
	text, err := ToText(expr)
	if err != nil {
		t.Fatalf("ToText: %v", err)
	}
	fromText, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	js, err := ToJSON(fromText)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	fromJSON, err := ParseJSON(js)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !Equal(expr, fromJSON) {
		gotText, _ := ToText(fromJSON)
		t.Errorf("cross round trip mismatch: got %s, want %s", gotText, text)
	}
}
