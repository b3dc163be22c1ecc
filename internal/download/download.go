// Package download fetches a remote still image that stands in for the camera feed.
// Images are cached by URL so repeated runs do not refetch.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// CacheDir is the default cache directory, relative to the working directory.
const CacheDir = "cache/backgrounds"

// MaxBytes bounds the size of a fetched image.
const MaxBytes = 32 << 20

const userAgent = "viz-engine/1.0 (+background fetch)"

// ErrNotImage is returned when the server answers with something other than PNG or JPEG.
var ErrNotImage = errors.New("download: not a PNG or JPEG image")

// IsURL reports whether s names an http or https resource rather than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Image fetches url into dir (CacheDir when empty) and returns the path of the saved file.
// A file already cached for url is returned without a request.
func Image(ctx context.Context, client *http.Client, url, dir string) (savedPath string, err error) {
	if dir == "" {
		dir = CacheDir
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	stem := cacheStem(url)
	for _, ext := range []string{".png", ".jpg"} {
		p := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/png, image/jpeg")
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: %s: HTTP %d", url, resp.StatusCode)
	}
	ext := extensionFromContentType(resp.Header.Get("Content-Type"))
	if ext == "" {
		ext = extensionFromURL(url)
	}
	if ext == "" {
		return "", fmt.Errorf("%w (%s)", ErrNotImage, resp.Header.Get("Content-Type"))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	savedPath = filepath.Join(dir, stem+ext)
	tmp, err := os.CreateTemp(dir, stem+"-*.part")
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer os.Remove(tmp.Name())
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, MaxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if n > MaxBytes {
		return "", fmt.Errorf("download: %s exceeds %d bytes", url, MaxBytes)
	}
	if err := os.Rename(tmp.Name(), savedPath); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	return savedPath, nil
}

// cacheStem is a readable, collision-resistant file stem for url.
func cacheStem(url string) string {
	sum := sha256.Sum256([]byte(url))
	return sanitizeFilename(filenameFromURL(url)) + "-" + hex.EncodeToString(sum[:6])
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	switch ct {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return ".jpg"
	}
	return ""
}

func extensionFromURL(url string) string {
	switch strings.ToLower(filepath.Ext(stripQuery(url))) {
	case ".png":
		return ".png"
	case ".jpg", ".jpeg":
		return ".jpg"
	}
	return ""
}

func filenameFromURL(url string) string {
	base := filepath.Base(stripQuery(url))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func stripQuery(url string) string {
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		return url[:idx]
	}
	return url
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeFilename(name string) string {
	name = safeNameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		return "background"
	}
	if len(name) > 48 {
		name = name[:48]
	}
	return name
}
