package directory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultDirectoryLookup(t *testing.T) {
	d := Default()
	svc, ok := d.Lookup("119")
	if !ok {
		t.Fatalf("119 must be present in the default directory")
	}
	if svc.Name == "" || svc.Availability == "" {
		t.Fatalf("incomplete service metadata: %+v", svc)
	}
	for _, code := range []string{"112", "110", "1925"} {
		if _, ok := d.Lookup(code); !ok {
			t.Fatalf("%s missing from default directory", code)
		}
	}
}

func TestLookupUnknownCode(t *testing.T) {
	if _, ok := Default().Lookup("999"); ok {
		t.Fatalf("unknown code must not resolve")
	}
}

func TestLoadFromFile(t *testing.T) {
	data := `
services:
  "119":
    name: 消防救護專線
    description: 緊急醫療救護
    availability: 24小時
    scope: 救護
`
	path := filepath.Join(t.TempDir(), "directory.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Len() != 1 {
		t.Fatalf("expected 1 service, got %d", d.Len())
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	if err := os.WriteFile(path, []byte("services: {}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidDirectory) {
		t.Fatalf("expected ErrInvalidDirectory, got %v", err)
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	data := `
services:
  "119":
    description: 緊急醫療救護
`
	path := filepath.Join(t.TempDir(), "directory.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidDirectory) {
		t.Fatalf("expected ErrInvalidDirectory, got %v", err)
	}
}
