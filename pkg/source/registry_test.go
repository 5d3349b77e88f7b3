package source

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/cratemap/pkg/cache"
	"github.com/matzehuels/cratemap/pkg/integrations/crates"
)

// crateTarGz builds a crates.io-shaped source archive: a single
// <name>-<version>/ directory holding the manifest.
func crateTarGz(t *testing.T, name, version, manifest string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	dir := fmt.Sprintf("%s-%s", name, version)
	if err := tw.WriteHeader(&tar.Header{Name: dir, Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
		t.Fatalf("WriteHeader() error: %v", err)
	}
	hdr := &tar.Header{
		Name:     dir + "/Cargo.toml",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(manifest)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatalf("WriteHeader() error: %v", err)
	}
	if _, err := tw.Write([]byte(manifest)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close error: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close error: %v", err)
	}
	return buf.Bytes()
}

// fakeRegistry serves version lookups and archives for a fixed crate set.
func fakeRegistry(t *testing.T, manifests map[string]string, requests *int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			*requests++
		}
		for name, manifest := range manifests {
			switch r.URL.Path {
			case "/api/v1/crates/" + name:
				fmt.Fprintf(w, `{"crate":{"name":%q,"max_version":"1.0.0","max_stable_version":"1.0.0"}}`, name)
				return
			case "/api/v1/crates/" + name + "/1.0.0/download":
				w.Write(crateTarGz(t, name, "1.0.0", manifest))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
}

func testRegistry(t *testing.T, serverURL string, backend cache.Cache) *RegistrySource {
	t.Helper()

	client := crates.NewClient(crates.Options{
		BaseURL: serverURL,
		Timeout: time.Second,
		Cache:   backend,
	})
	s, err := NewRegistry(client)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	return s
}

func TestRegistrySource(t *testing.T) {
	server := fakeRegistry(t, map[string]string{
		"app": "[package]\nname = \"app\"\n\n[dependencies]\nlib = \"1.0\"\n",
		"lib": "[package]\nname = \"lib\"\n",
	}, nil)
	defer server.Close()

	s := testRegistry(t, server.URL, nil)
	defer s.Close()

	if s.Name() != "registry" {
		t.Errorf("Name() = %q, want %q", s.Name(), "registry")
	}

	deps, err := s.DependenciesOf(context.Background(), "app")
	if err != nil {
		t.Fatalf("DependenciesOf(app) error: %v", err)
	}
	if !reflect.DeepEqual(deps, []string{"lib"}) {
		t.Errorf("DependenciesOf(app) = %v, want [lib]", deps)
	}

	deps, err = s.DependenciesOf(context.Background(), "lib")
	if err != nil {
		t.Fatalf("DependenciesOf(lib) error: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("DependenciesOf(lib) = %v, want none", deps)
	}
}

func TestRegistrySourceMemoizes(t *testing.T) {
	requests := 0
	server := fakeRegistry(t, map[string]string{
		"app": "[package]\nname = \"app\"\n\n[dependencies]\nlib = \"1.0\"\n",
	}, &requests)
	defer server.Close()

	s := testRegistry(t, server.URL, nil)
	defer s.Close()

	for i := 0; i < 2; i++ {
		if _, err := s.DependenciesOf(context.Background(), "app"); err != nil {
			t.Fatalf("DependenciesOf(app) error: %v", err)
		}
	}

	// One version lookup plus one download; the second call is memoized.
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
}

func TestRegistrySourceDurableCache(t *testing.T) {
	requests := 0
	server := fakeRegistry(t, map[string]string{
		"app": "[package]\nname = \"app\"\n\n[dependencies]\nlib = \"1.0\"\n",
	}, &requests)
	defer server.Close()

	backend, _ := cache.NewFileCache(t.TempDir())
	defer backend.Close()

	first := testRegistry(t, server.URL, backend)
	if _, err := first.DependenciesOf(context.Background(), "app"); err != nil {
		t.Fatalf("DependenciesOf(app) error: %v", err)
	}
	first.Close()

	if requests != 2 {
		t.Fatalf("requests after first run = %d, want 2", requests)
	}

	// A fresh source over the same backend resolves without any HTTP traffic.
	second := testRegistry(t, server.URL, backend)
	defer second.Close()

	deps, err := second.DependenciesOf(context.Background(), "app")
	if err != nil {
		t.Fatalf("DependenciesOf(app) error: %v", err)
	}
	if !reflect.DeepEqual(deps, []string{"lib"}) {
		t.Errorf("DependenciesOf(app) = %v, want [lib]", deps)
	}
	if requests != 2 {
		t.Errorf("requests after cached run = %d, want 2", requests)
	}
}

func TestRegistrySourceUnknownCrate(t *testing.T) {
	server := fakeRegistry(t, nil, nil)
	defer server.Close()

	s := testRegistry(t, server.URL, nil)
	defer s.Close()

	if _, err := s.DependenciesOf(context.Background(), "ghost"); err == nil {
		t.Error("DependenciesOf(ghost) should fail")
	}
}

func TestRegistrySourceCloseRemovesScratch(t *testing.T) {
	server := fakeRegistry(t, map[string]string{
		"app": "[package]\nname = \"app\"\n",
	}, nil)
	defer server.Close()

	s := testRegistry(t, server.URL, nil)

	if _, err := s.DependenciesOf(context.Background(), "app"); err != nil {
		t.Fatalf("DependenciesOf(app) error: %v", err)
	}

	path := s.scratch.Path
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("scratch dir missing before Close: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("scratch dir still present after Close: %v", err)
	}
}
