package snapshot

import (
	"reflect"
	"testing"
)

func TestCloneMapIsIndependent(t *testing.T) {
	original := map[string]any{
		"count": 1,
		"tags":  []any{"a", "b"},
		"meta":  map[string]any{"enabled": true},
	}

	cloned := Clone(original)
	if !reflect.DeepEqual(cloned, original) {
		t.Fatalf("expected identical content, got %#v", cloned)
	}

	cloned["count"] = 99
	cloned["tags"].([]any)[0] = "mutated"
	cloned["meta"].(map[string]any)["enabled"] = false

	if original["count"] != 1 {
		t.Fatalf("expected original count untouched, got %v", original["count"])
	}
	if original["tags"].([]any)[0] != "a" {
		t.Fatal("expected original slice untouched")
	}
	if !original["meta"].(map[string]any)["enabled"].(bool) {
		t.Fatal("expected original nested map untouched")
	}
}

func TestClonePointerAndStruct(t *testing.T) {
	type inner struct {
		Values []int
	}
	type outer struct {
		Name  string
		Inner *inner
	}

	original := outer{Name: "a", Inner: &inner{Values: []int{1, 2}}}
	cloned := Clone(original)

	if cloned.Inner == original.Inner {
		t.Fatal("expected pointer to be cloned")
	}
	cloned.Inner.Values[0] = 99
	if original.Inner.Values[0] != 1 {
		t.Fatal("expected original slice untouched")
	}
}

func TestCloneNilValues(t *testing.T) {
	if got := Clone[map[string]any](nil); got != nil {
		t.Fatalf("expected nil map, got %#v", got)
	}
	if got := Clone[[]string](nil); got != nil {
		t.Fatalf("expected nil slice, got %#v", got)
	}
	if got := Clone[any](nil); got != nil {
		t.Fatalf("expected nil interface, got %#v", got)
	}
}

func TestOverlayFillsMissingKeys(t *testing.T) {
	strong := map[string]any{
		"message": "restored",
		"nested":  map[string]any{"a": 1},
	}
	weak := map[string]any{
		"message": "initial",
		"extra":   true,
		"nested":  map[string]any{"a": 0, "b": 2},
	}

	merged := Overlay(strong, weak)

	want := map[string]any{
		"message": "restored",
		"extra":   true,
		"nested":  map[string]any{"a": 1, "b": 2},
	}
	if !reflect.DeepEqual(merged, want) {
		t.Fatalf("unexpected overlay:\nwant %#v\n got %#v", want, merged)
	}
}

func TestOverlayDoesNotAliasInputs(t *testing.T) {
	strong := map[string]any{"list": []any{"x"}}
	weak := map[string]any{"list": []any{"y"}, "keep": map[string]any{"k": 1}}

	merged := Overlay(strong, weak)
	merged["list"].([]any)[0] = "mutated"
	merged["keep"].(map[string]any)["k"] = 99

	if strong["list"].([]any)[0] != "x" {
		t.Fatal("expected strong input untouched")
	}
	if weak["keep"].(map[string]any)["k"] != 1 {
		t.Fatal("expected weak input untouched")
	}
}

func TestOverlayStructFields(t *testing.T) {
	type settings struct {
		Theme string
		Tabs  []string
	}

	strong := settings{Theme: "dark"}
	weak := settings{Theme: "light", Tabs: []string{"a"}}

	merged := Overlay(strong, weak)
	if merged.Theme != "dark" {
		t.Fatalf("expected strong theme, got %q", merged.Theme)
	}
	if !reflect.DeepEqual(merged.Tabs, []string{"a"}) {
		t.Fatalf("expected weak tabs to fill in, got %v", merged.Tabs)
	}
}
