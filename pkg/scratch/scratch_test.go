package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAndClose(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if d.ID == "" {
		t.Error("ID should not be empty")
	}
	if !strings.Contains(filepath.Base(d.Path), d.ID) {
		t.Errorf("Path %q should contain ID %q", d.Path, d.ID)
	}

	info, err := os.Stat(d.Path)
	if err != nil {
		t.Fatalf("scratch dir should exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("scratch path should be a directory")
	}

	path := d.Path
	if err := d.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Close should remove the directory")
	}

	// Close is idempotent
	if err := d.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
}

func TestSub(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer d.Close()

	sub, err := d.Sub("crates", "serde-1.0.0")
	if err != nil {
		t.Fatalf("Sub error: %v", err)
	}

	want := filepath.Join(d.Path, "crates", "serde-1.0.0")
	if sub != want {
		t.Errorf("Sub = %q, want %q", sub, want)
	}
	if info, err := os.Stat(sub); err != nil || !info.IsDir() {
		t.Errorf("Sub should create the directory: %v", err)
	}

	// Close removes nested content too
	path := d.Path
	if err := d.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Close should remove nested directories")
	}
}

func TestUniqueIDs(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer a.Close()

	b, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer b.Close()

	if a.ID == b.ID {
		t.Error("scratch dirs should have unique IDs")
	}
	if a.Path == b.Path {
		t.Error("scratch dirs should have unique paths")
	}
}
