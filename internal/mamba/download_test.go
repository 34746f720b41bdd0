// SPDX-License-Identifier: MPL-2.0

package mamba

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureBinaryDownloadsPlainBinary(t *testing.T) {
	stubLookPath(t, nil)
	stubCommonLocations(t, nil)

	payload := []byte("\x7fELF fake micromamba")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	dataDir := t.TempDir()
	r := NewResolver(dataDir, WithDownloadURLs([]string{srv.URL}))
	bin, err := r.EnsureBinary(context.Background())
	if err != nil {
		t.Fatalf("EnsureBinary() error: %v", err)
	}

	got, err := os.ReadFile(bin.Path)
	if err != nil {
		t.Fatalf("reading installed binary: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("installed binary does not match the served payload")
	}
	info, err := os.Stat(bin.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("installed binary mode = %v, want owner-executable", info.Mode())
	}
}

func TestEnsureBinaryFallsBackToSecondSource(t *testing.T) {
	stubLookPath(t, nil)
	stubCommonLocations(t, nil)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(bad.Close)
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("binary"))
	}))
	t.Cleanup(good.Close)

	r := NewResolver(t.TempDir(), WithDownloadURLs([]string{bad.URL, good.URL}))
	if _, err := r.EnsureBinary(context.Background()); err != nil {
		t.Fatalf("EnsureBinary() error: %v", err)
	}
}

func TestEnsureBinaryRejectsHTMLErrorPage(t *testing.T) {
	stubLookPath(t, nil)
	stubCommonLocations(t, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>rate limited</body></html>"))
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(t.TempDir(), WithDownloadURLs([]string{srv.URL}))
	_, err := r.EnsureBinary(context.Background())
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("EnsureBinary() error = %v, want ErrDownloadFailed", err)
	}
	if !errors.Is(err, ErrNoPackageManager) {
		t.Errorf("EnsureBinary() error = %v, want ErrNoPackageManager", err)
	}
}

func TestExtractTar(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	files := []struct {
		name string
		body string
	}{
		{name: "info/recipe/meta.yaml", body: "noise"},
		{name: "bin/micromamba", body: "the binary"},
	}
	for _, f := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name: f.name, Mode: 0o755, Size: int64(len(f.body)), Typeflag: tar.TypeReg,
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(f.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(t.TempDir(), "micromamba")
	if err := extractTar(&buf, target); err != nil {
		t.Fatalf("extractTar() error: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "the binary" {
		t.Errorf("extracted contents = %q", got)
	}
}

func TestExtractTarMissingMember(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{
		Name: "bin/other", Mode: 0o755, Size: 0, Typeflag: tar.TypeReg,
	}); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(t.TempDir(), "micromamba")
	if err := extractTar(&buf, target); err == nil {
		t.Error("extractTar() succeeded on an archive without the binary")
	}
}

func TestPayloadSniffing(t *testing.T) {
	t.Parallel()

	if !isHTMLPage([]byte("<html><head>")) || !isHTMLPage([]byte("<!DOCTYPE html>")) {
		t.Error("isHTMLPage missed an HTML document")
	}
	if isHTMLPage([]byte("BZh91AY")) {
		t.Error("isHTMLPage flagged a bzip2 payload")
	}
	if !isBzip2([]byte{0x42, 0x5a, 0x68, 0x39}) {
		t.Error("isBzip2 missed the BZh magic")
	}
	if isBzip2([]byte("\x7fELF")) {
		t.Error("isBzip2 flagged an ELF binary")
	}
}
