package contract

import (
	"reflect"
	"testing"
)

func TestNew_RejectsEmptyAndColliding(t *testing.T) {
	if _, err := New([]string{"NDVI", "  "}); err == nil {
		t.Error("expected error for empty feature name")
	}
	if _, err := New([]string{"NDVI", "ndvi "}); err == nil {
		t.Error("expected error for features colliding after normalization")
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	c, err := New([]string{"NDVI", "EVI", "Canopy_Cover"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := c.Resolve([]string{"ndvi", " evi ", "CANOPY_COVER"})
	if !res.OK() {
		t.Fatalf("expected full resolution, missing: %v", res.Missing)
	}
	if res.ByFeature["NDVI"] != "ndvi" {
		t.Errorf("expected NDVI matched by 'ndvi', got %q", res.ByFeature["NDVI"])
	}
	if len(res.Extra) != 0 {
		t.Errorf("expected no extras, got %v", res.Extra)
	}
}

func TestResolve_MissingInCanonicalOrder(t *testing.T) {
	c, err := New([]string{"NDVI", "EVI", "Canopy_Cover"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := c.Resolve([]string{"EVI", "soil_moisture"})
	if res.OK() {
		t.Fatal("expected unresolved contract")
	}
	if want := []string{"NDVI", "Canopy_Cover"}; !reflect.DeepEqual(res.Missing, want) {
		t.Errorf("expected missing %v, got %v", want, res.Missing)
	}
	if want := []string{"soil_moisture"}; !reflect.DeepEqual(res.Extra, want) {
		t.Errorf("expected extra %v, got %v", want, res.Extra)
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	c, err := New([]string{"NDVI"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := c.Resolve([]string{"ndvi", "NDVI"})
	if res.ByFeature["NDVI"] != "ndvi" {
		t.Errorf("expected first supplied column to win, got %q", res.ByFeature["NDVI"])
	}
}
