// SPDX-License-Identifier: MPL-2.0

package mamba

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	downloadTimeout = 5 * time.Minute
	downloadRetries = 3
	userAgent       = "enva/0.1.0"
)

// ErrDownloadFailed is the sentinel error wrapped by DownloadError. Callers
// map it to the network exit code.
var ErrDownloadFailed = errors.New("download failed")

// DownloadError is returned when micromamba could not be fetched from any
// source. It wraps ErrDownloadFailed.
type DownloadError struct {
	URLs []string
	Err  error
}

// Error implements the error interface.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download micromamba from %s: %v",
		strings.Join(e.URLs, ", "), e.Err)
}

// Unwrap returns the wrapped errors for errors.Is inspection.
func (e *DownloadError) Unwrap() []error { return []error{ErrDownloadFailed, e.Err} }

// downloader fetches a micromamba binary from the distribution endpoints.
type downloader struct {
	client *http.Client
	urls   []string
}

func newDownloader() *downloader {
	return &downloader{
		client: &http.Client{Timeout: downloadTimeout},
	}
}

// fetch downloads the binary to target, trying each source in order with
// retries. The payload may be the raw executable or a tar.bz2 archive
// containing bin/micromamba.
func (d *downloader) fetch(ctx context.Context, target string) error {
	urls := d.urls
	if urls == nil {
		goos, goarch := hostPlatform()
		var err error
		urls, err = downloadURLs(goos, goarch)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create install directory: %w", err)
	}

	var lastErr error
	for _, url := range urls {
		slog.Debug("downloading micromamba", "url", url)
		payload, err := d.fetchOne(ctx, url)
		if err != nil {
			slog.Warn("micromamba source failed", "url", url, "error", err)
			lastErr = err
			continue
		}
		if err := installPayload(payload, target); err != nil {
			slog.Warn("micromamba payload unusable", "url", url, "error", err)
			lastErr = err
			continue
		}
		slog.Info("micromamba installed", "path", target)
		return nil
	}
	return &DownloadError{URLs: urls, Err: lastErr}
}

// fetchOne downloads a single URL with exponential backoff.
func (d *downloader) fetchOne(ctx context.Context, url string) ([]byte, error) {
	var payload []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %s", resp.Status)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		payload, err = io.ReadAll(resp.Body)
		return err
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), downloadRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return payload, nil
}

// installPayload writes a downloaded payload as the executable at target,
// extracting it first when it is a tar.bz2 archive. Payloads that look like
// an HTML error page are rejected.
func installPayload(payload []byte, target string) error {
	if isHTMLPage(payload) {
		return errors.New("received an HTML page instead of a binary")
	}

	if isBzip2(payload) {
		if err := extractTar(bzip2.NewReader(bytes.NewReader(payload)), target); err != nil {
			return fmt.Errorf("failed to extract archive: %w", err)
		}
	} else {
		if err := os.WriteFile(target, payload, 0o644); err != nil {
			return fmt.Errorf("failed to write binary: %w", err)
		}
	}
	return setExecutable(target)
}

// isHTMLPage reports whether the payload starts like an HTML document, which
// the distribution endpoints serve on errors.
func isHTMLPage(b []byte) bool {
	return bytes.HasPrefix(b, []byte("<!DOCTYPE html")) || bytes.HasPrefix(b, []byte("<html"))
}

// isBzip2 reports whether the payload carries the bzip2 "BZh" magic bytes.
func isBzip2(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0x42, 0x5a, 0x68})
}

// extractTar scans an uncompressed tar stream for the micromamba executable
// (typically bin/micromamba) and writes it to target.
func extractTar(r io.Reader, target string) error {
	want := filepath.Base(target)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("archive does not contain %s", want)
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(hdr.Name)
		if name != want && name != "micromamba" {
			continue
		}

		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		_, err = io.Copy(f, tr) //nolint:gosec // Payload size is bounded by the download.
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}
}
