package fonts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultListing lists the open-licensed families of the google/fonts repository.
	DefaultListing = "https://api.github.com/repos/google/fonts/contents/ofl"
	// DefaultRawPrefix is the only host files are downloaded from.
	DefaultRawPrefix = "https://raw.githubusercontent.com/google/fonts/"
)

// maxFontBytes bounds a downloaded font file.
const maxFontBytes = 16 << 20

// Fetcher downloads a family's font file into Dir so Find can resolve it by name.
type Fetcher struct {
	Client    *http.Client
	Listing   string
	RawPrefix string
	Dir       string
}

type listedFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Folders converts a display name to the folder names tried in the listing:
// "Open Sans" gives "opensans" then "open-sans".
func Folders(family string) []string {
	lower := strings.ToLower(strings.TrimSpace(family))
	if lower == "" {
		return nil
	}
	joined := strings.ReplaceAll(lower, " ", "")
	out := []string{joined}
	if hyphen := strings.ReplaceAll(lower, " ", "-"); hyphen != joined {
		out = append(out, hyphen)
	}
	return out
}

// Fetch downloads family into Dir and returns the saved path. A family that Find already
// resolves under Dir is returned without a request.
func (f Fetcher) Fetch(ctx context.Context, family string) (string, error) {
	folders := Folders(family)
	if len(folders) == 0 {
		return "", fmt.Errorf("fonts: empty family name")
	}
	dir := f.dir()
	if path, err := Find(family, dir); err == nil {
		return path, nil
	}
	var lastErr error
	for _, folder := range folders {
		u, err := f.fileURL(ctx, folder)
		if err != nil {
			lastErr = err
			continue
		}
		return f.save(ctx, u, dir)
	}
	return "", lastErr
}

func (f Fetcher) dir() string {
	if f.Dir != "" {
		return f.Dir
	}
	return BaseDirs()[0]
}

func (f Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (f Fetcher) get(ctx context.Context, u, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("fonts: %s: %w", u, os.ErrNotExist)
		}
		return nil, fmt.Errorf("fonts: %s: HTTP %d", u, resp.StatusCode)
	}
	return resp, nil
}

// fileURL picks the upright font file in folder, or an italic one if that is all there is.
func (f Fetcher) fileURL(ctx context.Context, folder string) (string, error) {
	listing, prefix := f.Listing, f.RawPrefix
	if listing == "" {
		listing = DefaultListing
	}
	if prefix == "" {
		prefix = DefaultRawPrefix
	}
	resp, err := f.get(ctx, strings.TrimSuffix(listing, "/")+"/"+url.PathEscape(folder), "application/vnd.github.v3+json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var files []listedFile
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return "", fmt.Errorf("fonts: listing %s: %w", folder, err)
	}
	var italic string
	for _, lf := range files {
		if lf.Type != "file" || !isFontFile(lf.Name) || !strings.HasPrefix(lf.DownloadURL, prefix) {
			continue
		}
		if strings.Contains(strings.ToLower(lf.Name), "italic") {
			if italic == "" {
				italic = lf.DownloadURL
			}
			continue
		}
		return lf.DownloadURL, nil
	}
	if italic != "" {
		return italic, nil
	}
	return "", fmt.Errorf("fonts: no font file in %q: %w", folder, os.ErrNotExist)
}

func (f Fetcher) save(ctx context.Context, u, dir string) (string, error) {
	resp, err := f.get(ctx, u, "*/*")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	name, err := url.PathUnescape(filepath.Base(u))
	if err != nil || !isFontFile(name) {
		return "", fmt.Errorf("fonts: unexpected file name in %s", u)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("fonts: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("fonts: %w", err)
	}
	n, err := io.Copy(out, io.LimitReader(resp.Body, maxFontBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxFontBytes {
		err = fmt.Errorf("%s exceeds %d bytes", u, maxFontBytes)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("fonts: %w", err)
	}
	return path, nil
}
