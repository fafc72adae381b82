package export

import (
	"reflect"
	"testing"
)

func TestFlattenNested(t *testing.T) {
	got := Flatten(map[string]any{
		"location": map[string]any{"country": "US"},
	})
	want := map[string]any{"location.country": "US"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %v, want %v", got, want)
	}
}

func TestFlattenDepth(t *testing.T) {
	got := Flatten(map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": float64(1),
			},
		},
		"top": "v",
	})
	want := map[string]any{"a.b.c": float64(1), "top": "v"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %v, want %v", got, want)
	}
}

func TestFlattenIdempotentOnFlat(t *testing.T) {
	flat := map[string]any{
		"id":     "x",
		"count":  float64(3),
		"active": true,
		"note":   nil,
	}
	got := Flatten(flat)
	if !reflect.DeepEqual(got, flat) {
		t.Fatalf("Flatten on flat map = %v, want unchanged %v", got, flat)
	}
}

func TestFlattenKeepsScalars(t *testing.T) {
	got := Flatten(map[string]any{
		"flags": map[string]any{"isVerified": false},
		"tags":  []any{"a", "b"},
		"tier":  nil,
	})
	if got["flags.isVerified"] != false {
		t.Fatalf("boolean scalar lost: %v", got)
	}
	if _, ok := got["tier"]; !ok {
		t.Fatalf("nil value should stay present under its key")
	}
	if _, ok := got["tags"].([]any); !ok {
		t.Fatalf("list values should be assigned directly, got %T", got["tags"])
	}
}

func TestCollectKeysSortedUnion(t *testing.T) {
	records := []map[string]any{
		{"b": 1, "nested": map[string]any{"z": 1}},
		{"a": 2},
	}
	got := collectKeys(records)
	want := []string{"a", "b", "nested.z"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("collectKeys = %v, want %v", got, want)
	}
}
