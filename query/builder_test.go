package query

import (
	"testing"
	"time"

	ogcfilter "github.com/planetlabs/go-ogc/filter"

	"github.com/robert-malhotra/go-stac-client/pkg/cql2"
)

func TestBuilderLegacyFilter(t *testing.T) {
	b := NewBuilder().
		Where(Property("eo:cloud_cover").Lt(20)).
		And(Property("collection").Eq("landsat-c2l2"))

	filter := b.Filter()
	and, ok := filter.(*ogcfilter.And)
	if !ok {
		t.Fatalf("Filter() = %T, want *ogcfilter.And", filter)
	}
	if len(and.Args) != 2 {
		t.Fatalf("And has %d args, want 2", len(and.Args))
	}
}

func TestBuilderMustPanicsWhenEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Must() on empty builder did not panic")
		}
	}()
	NewBuilder().Must()
}

func TestBuilderBBoxAndDatetime(t *testing.T) {
	bbox := BBox(-105.2, 40.0, -105.0, 40.2)
	if _, ok := bbox.(*ogcfilter.SpatialComparison); !ok {
		t.Fatalf("BBox() = %T, want *ogcfilter.SpatialComparison", bbox)
	}

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	dt := Datetime(start, end)
	cmp, ok := dt.(*ogcfilter.TemporalComparison)
	if !ok {
		t.Fatalf("Datetime() = %T, want *ogcfilter.TemporalComparison", dt)
	}
	if cmp.Name != ogcfilter.TimeIntersects {
		t.Errorf("Datetime() name = %v, want TimeIntersects", cmp.Name)
	}
}

func TestBuilderWithCQL2CombinesWithAnd(t *testing.T) {
	a := cql2.NewOperation("=", &cql2.Property{Name: "collection"}, cql2.Literal("landsat-c2l2"))
	b := cql2.NewOperation("<", &cql2.Property{Name: "eo:cloud_cover"}, cql2.Float(20))

	builder := NewBuilder().WithCQL2(a).WithCQL2(b)

	text, ok, err := builder.CQL2Text()
	if err != nil {
		t.Fatalf("CQL2Text: %v", err)
	}
	if !ok {
		t.Fatal("CQL2Text() ok = false, want true")
	}
	if !containsAll(text, `collection = 'landsat-c2l2'`, `"eo:cloud_cover" < 20`, " AND ") {
		t.Errorf("CQL2Text() = %q, missing expected fragments", text)
	}
}

func TestBuilderCQL2PropertiesListsTouchedProperties(t *testing.T) {
	a := cql2.NewOperation("=", &cql2.Property{Name: "collection"}, cql2.Literal("landsat-c2l2"))
	b := cql2.NewOperation("<", &cql2.Property{Name: "eo:cloud_cover"}, cql2.Float(20))

	builder := NewBuilder().WithCQL2(a).WithCQL2(b)

	props, err := builder.CQL2Properties()
	if err != nil {
		t.Fatalf("CQL2Properties: %v", err)
	}
	want := []string{"collection", "eo:cloud_cover"}
	if len(props) != len(want) {
		t.Fatalf("CQL2Properties() = %v, want %v", props, want)
	}
	for i := range want {
		if props[i] != want[i] {
			t.Errorf("CQL2Properties()[%d] = %q, want %q", i, props[i], want[i])
		}
	}
}

func TestBuilderCQL2PropertiesEmptyBuilder(t *testing.T) {
	props, err := NewBuilder().CQL2Properties()
	if err != nil {
		t.Fatalf("CQL2Properties: %v", err)
	}
	if props != nil {
		t.Errorf("CQL2Properties() on empty builder = %v, want nil", props)
	}
}

func TestBuilderCQL2TextEmptyBuilder(t *testing.T) {
	_, ok, err := NewBuilder().CQL2Text()
	if err != nil {
		t.Fatalf("CQL2Text: %v", err)
	}
	if ok {
		t.Fatal("CQL2Text() ok = true on empty builder, want false")
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
