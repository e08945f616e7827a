package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultResourceTimeout bounds every optional resource fetch.
const DefaultResourceTimeout = 5 * time.Second

// maxResourceSize caps fonts and signature images read into memory.
const maxResourceSize = 32 << 20

// ErrResourceNotConfigured is returned when an optional resource has no source.
var ErrResourceNotConfigured = errors.New("resource not configured")

// FetchResource reads src, which is either an http(s) URL or a local path
// (optionally prefixed with file://).
func FetchResource(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrResourceNotConfigured
	}

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: unexpected status %d", src, resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		return data, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(strings.TrimPrefix(src, "file://"))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return data, nil
}

// isTrueType checks the sfnt version tag of a TrueType font.
func isTrueType(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	tag := string(data[:4])
	return tag == "\x00\x01\x00\x00" || tag == "true"
}

// FontLoader loads the document fonts once per process. A failed load is not
// cached, so the next export tries again.
type FontLoader struct {
	RegularPath string
	BoldPath    string
	Timeout     time.Duration

	mu    sync.Mutex
	fonts *FontSet
}

// NewFontLoader returns a loader for the given regular and bold font sources.
func NewFontLoader(regular, bold string, timeout time.Duration) *FontLoader {
	return &FontLoader{RegularPath: regular, BoldPath: bold, Timeout: timeout}
}

// Load returns the cached fonts, fetching them on first use.
func (f *FontLoader) Load(ctx context.Context) (FontSet, error) {
	// Held across the fetch: concurrent exports wait for a single load.
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fonts != nil {
		return *f.fonts, nil
	}

	regular, err := f.fetch(ctx, f.RegularPath)
	if err != nil {
		return FontSet{}, fmt.Errorf("load regular font: %w", err)
	}
	fs := FontSet{Regular: regular}

	if strings.TrimSpace(f.BoldPath) != "" {
		bold, err := f.fetch(ctx, f.BoldPath)
		if err != nil {
			// the regular face doubles as bold
			log.Printf("resources: bold font unavailable, using regular face: %v", err)
		} else {
			fs.Bold = bold
		}
	}

	f.fonts = &fs
	return fs, nil
}

func (f *FontLoader) fetch(ctx context.Context, src string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultResourceTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := FetchResource(ctx, src)
	if err != nil {
		return nil, err
	}
	if !isTrueType(data) {
		return nil, fmt.Errorf("%s is not a TrueType font", src)
	}
	return data, nil
}

// PrepareSignature decodes an image (PNG, JPEG or GIF), scales it down to fit
// the footer and re-encodes it as PNG.
func PrepareSignature(data []byte) (*SignatureImage, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}

	// fit at 4x the drawn size
	fitted := imaging.Fit(img, signatureWidth*4, signatureMaxH*4, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode signature: %w", err)
	}
	b := fitted.Bounds()
	return &SignatureImage{PNG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// LoadSignature fetches and prepares the signature image within timeout.
func LoadSignature(ctx context.Context, src string, timeout time.Duration) (*SignatureImage, error) {
	if timeout <= 0 {
		timeout = DefaultResourceTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := FetchResource(ctx, src)
	if err != nil {
		return nil, err
	}
	return PrepareSignature(data)
}
