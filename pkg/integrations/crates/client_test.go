package crates

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/cratemap/pkg/buildinfo"
	"github.com/matzehuels/cratemap/pkg/cache"
	cratemaperrors "github.com/matzehuels/cratemap/pkg/errors"
	"github.com/matzehuels/cratemap/pkg/integrations"
)

func testClient(serverURL string) *Client {
	return NewClient(Options{BaseURL: serverURL, Timeout: time.Second})
}

func crateJSON(name, maxVersion, maxStable string) []byte {
	var resp crateResponse
	resp.Crate.Name = name
	resp.Crate.MaxVersion = maxVersion
	resp.Crate.MaxStableVersion = maxStable
	data, _ := json.Marshal(resp)
	return data
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()

	if opts.BaseURL != "https://crates.io" {
		t.Errorf("BaseURL = %q, want %q", opts.BaseURL, "https://crates.io")
	}
	if opts.UserAgent != buildinfo.UserAgent() {
		t.Errorf("UserAgent = %q, want %q", opts.UserAgent, buildinfo.UserAgent())
	}
	if opts.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v, want %v", opts.Timeout, defaultTimeout)
	}
	if opts.TTL != defaultTTL {
		t.Errorf("TTL = %v, want %v", opts.TTL, defaultTTL)
	}
}

func TestOptionsWithDefaultsKeepsExplicit(t *testing.T) {
	opts := Options{BaseURL: "http://localhost:8080", UserAgent: "custom/1.0"}.WithDefaults()

	if opts.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want explicit value kept", opts.BaseURL)
	}
	if opts.UserAgent != "custom/1.0" {
		t.Errorf("UserAgent = %q, want explicit value kept", opts.UserAgent)
	}
}

func TestLatestVersionPrefersStable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/crates/serde" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write(crateJSON("serde", "2.0.0-beta.1", "1.0.219"))
	}))
	defer server.Close()

	c := testClient(server.URL)

	version, err := c.LatestVersion(context.Background(), "serde")
	if err != nil {
		t.Fatalf("LatestVersion() error: %v", err)
	}
	if version != "1.0.219" {
		t.Errorf("version = %q, want %q", version, "1.0.219")
	}
}

func TestLatestVersionFallsBackToMax(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(crateJSON("experiment", "0.1.0-alpha", ""))
	}))
	defer server.Close()

	c := testClient(server.URL)

	version, err := c.LatestVersion(context.Background(), "experiment")
	if err != nil {
		t.Fatalf("LatestVersion() error: %v", err)
	}
	if version != "0.1.0-alpha" {
		t.Errorf("version = %q, want %q", version, "0.1.0-alpha")
	}
}

func TestLatestVersionNoVersions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(crateJSON("ghost", "", ""))
	}))
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.LatestVersion(context.Background(), "ghost")
	if err == nil {
		t.Error("LatestVersion() should fail for a crate without versions")
	}
}

func TestLatestVersionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.LatestVersion(context.Background(), "nonexistent")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("LatestVersion() error = %v, want ErrNotFound", err)
	}
}

func TestLatestVersionSetsUserAgent(t *testing.T) {
	var receivedAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAgent = r.Header.Get("User-Agent")
		w.Write(crateJSON("serde", "1.0.0", "1.0.0"))
	}))
	defer server.Close()

	c := testClient(server.URL)

	if _, err := c.LatestVersion(context.Background(), "serde"); err != nil {
		t.Fatalf("LatestVersion() error: %v", err)
	}
	if receivedAgent != buildinfo.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", receivedAgent, buildinfo.UserAgent())
	}
}

func TestLatestVersionCached(t *testing.T) {
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(crateJSON("serde", "1.0.0", "1.0.0"))
	}))
	defer server.Close()

	backend, _ := cache.NewFileCache(t.TempDir())
	defer backend.Close()

	c := NewClient(Options{BaseURL: server.URL, Timeout: time.Second, Cache: backend})

	for i := 0; i < 2; i++ {
		version, err := c.LatestVersion(context.Background(), "serde")
		if err != nil {
			t.Fatalf("LatestVersion() error: %v", err)
		}
		if version != "1.0.0" {
			t.Errorf("version = %q, want %q", version, "1.0.0")
		}
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (second lookup cached)", requests)
	}
}

func buildTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     0o644,
			Size:     int64(len(e.content)),
			Typeflag: tar.TypeReg,
		}
		if e.dir {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%q) error: %v", e.name, err)
		}
		if !e.dir {
			if _, err := tw.Write([]byte(e.content)); err != nil {
				t.Fatalf("Write(%q) error: %v", e.name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close error: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close error: %v", err)
	}
	return buf.Bytes()
}

type tarEntry struct {
	name    string
	content string
	dir     bool
}

func TestDownloadTo(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "serde-1.0.0", dir: true},
		{name: "serde-1.0.0/Cargo.toml", content: "[package]\nname = \"serde\"\n"},
		{name: "serde-1.0.0/src/lib.rs", content: "// lib"},
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/crates/serde/1.0.0/download" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write(archive)
	}))
	defer server.Close()

	c := testClient(server.URL)
	dir := t.TempDir()

	if err := c.DownloadTo(context.Background(), "serde", "1.0.0", dir); err != nil {
		t.Fatalf("DownloadTo() error: %v", err)
	}

	manifest := filepath.Join(dir, "serde-1.0.0", "Cargo.toml")
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("ReadFile(%q) error: %v", manifest, err)
	}
	if !bytes.Contains(data, []byte("name = \"serde\"")) {
		t.Errorf("manifest content = %q, missing package name", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "serde-1.0.0", "src", "lib.rs")); err != nil {
		t.Errorf("nested file missing: %v", err)
	}
}

func TestDownloadToRejectsTraversal(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "../escape.txt", content: "evil"},
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	c := testClient(server.URL)
	dir := t.TempDir()

	err := c.DownloadTo(context.Background(), "evil", "1.0.0", dir)
	if err == nil {
		t.Fatal("DownloadTo() should reject traversal entries")
	}
	if !cratemaperrors.Is(err, cratemaperrors.ErrCodeInvalidPath) {
		t.Errorf("DownloadTo() error = %v, want INVALID_PATH code", err)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt")); statErr == nil {
		t.Error("traversal entry was written outside target dir")
	}
}

func TestDownloadToNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(server.URL)

	err := c.DownloadTo(context.Background(), "nonexistent", "1.0.0", t.TempDir())
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("DownloadTo() error = %v, want ErrNotFound", err)
	}
}

func TestDownloadToBadArchive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not gzip"))
	}))
	defer server.Close()

	c := testClient(server.URL)

	err := c.DownloadTo(context.Background(), "broken", "1.0.0", t.TempDir())
	if err == nil {
		t.Error("DownloadTo() should fail on a malformed archive")
	}
}
