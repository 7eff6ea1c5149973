package keyfill

import "testing"

func TestLibraryResolve(t *testing.T) {
	lib := NewLibrary()
	lib.Register("footer", "1.0", "v1 text")
	lib.Register("footer", "2.0", "v2 text")
	lib.Register("header", "1.0", "header text")

	got, err := lib.Resolve("footer", "")
	if err != nil || got != "v2 text" {
		t.Errorf("latest = %q, %v; want v2 text", got, err)
	}

	got, err = lib.Resolve("footer", "1.0")
	if err != nil || got != "v1 text" {
		t.Errorf("pinned = %q, %v; want v1 text", got, err)
	}

	if _, err := lib.Resolve("missing", ""); !IsLookupError(err) {
		t.Errorf("unknown name: error = %v, want LookupError", err)
	}
	if _, err := lib.Resolve("footer", "9.9"); !IsLookupError(err) {
		t.Errorf("unknown version: error = %v, want LookupError", err)
	}
}

func TestLibraryReRegisterBecomesLatest(t *testing.T) {
	lib := NewLibrary()
	lib.Register("note", "1.0", "old")
	lib.Register("note", "2.0", "mid")
	lib.Register("note", "1.0", "old again")

	got, err := lib.Resolve("note", "")
	if err != nil || got != "old again" {
		t.Errorf("latest = %q, %v; want the most recently registered version", got, err)
	}
	got, err = lib.Resolve("note", "1.0")
	if err != nil || got != "old again" {
		t.Errorf("re-registered content = %q, %v", got, err)
	}
}

func TestLibraryNames(t *testing.T) {
	lib := NewLibrary()
	lib.Register("b", "1", "x")
	lib.Register("a", "1", "y")

	names := lib.Names()
	if len(names) != 2 {
		t.Fatalf("names = %v, want 2 entries", names)
	}
}
