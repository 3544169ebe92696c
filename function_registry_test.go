package store

import (
	"reflect"
	"strings"
	"testing"
)

func TestFunctionRegistryRegisterAndCall(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("Upper", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Lookup is case-insensitive.
	value, err := registry.Call("upper", "hi")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if value != "HI" {
		t.Fatalf("expected HI, got %v", value)
	}

	if err := registry.Register("UPPER", func(args ...any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err := registry.Register("", func(args ...any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected empty name to fail")
	}
	if err := registry.Register("nilfn", nil); err == nil {
		t.Fatal("expected nil function to fail")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatal("expected unknown function to fail")
	}
}

func TestFunctionRegistryCloneIsIndependent(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("a", func(args ...any) (any, error) { return "a", nil }); err != nil {
		t.Fatalf("register: %v", err)
	}

	clone := registry.Clone()
	if err := clone.Register("b", func(args ...any) (any, error) { return "b", nil }); err != nil {
		t.Fatalf("register on clone: %v", err)
	}

	if got := registry.Names(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected original unchanged, got %v", got)
	}
	if got := clone.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected clone extended, got %v", got)
	}
}

func TestProgramMapCache(t *testing.T) {
	cache := NewProgramMapCache()
	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	cache.Set("expr", 42)
	value, ok := cache.Get("expr")
	if !ok || value != 42 {
		t.Fatalf("expected cached value, got %v (%v)", value, ok)
	}
	cache.Set("expr", 43)
	if value, _ := cache.Get("expr"); value != 43 {
		t.Fatalf("expected replacement, got %v", value)
	}
}
