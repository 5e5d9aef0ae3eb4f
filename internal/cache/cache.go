// Package cache fetches and processes the images referenced by image
// components: downloads are bounded and cached, every image is fitted to
// its component box with aspect ratio preserved, and the editor gets
// lightweight WebP previews.
package cache

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	gocache "github.com/patrickmn/go-cache"
	_ "golang.org/x/image/webp"
)

var (
	// Processed image bytes, keyed by URL and target box.
	imageCache *gocache.Cache

	// HTTP client with timeout and connection pooling.
	httpClient *http.Client

	once sync.Once
)

func Init() {
	once.Do(func() {
		imageCache = gocache.New(10*time.Minute, 20*time.Minute)

		transport := &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		}
		httpClient = &http.Client{
			Timeout:   5 * time.Second,
			Transport: transport,
		}
	})
}

func cacheKey(prefix, url string, w, h int) string {
	hash := md5.Sum([]byte(url))
	return fmt.Sprintf("%s:%s_%d_%d", prefix, hex.EncodeToString(hash[:]), w, h)
}

func download(url string) ([]byte, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: bad status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// GetImageData downloads an image and returns it fitted inside the given
// pixel box, aspect ratio preserved, re-encoded as PNG. All processing is
// in memory; results are cached per URL and box size.
func GetImageData(url string, width, height int) ([]byte, error) {
	Init()
	if url == "" {
		return nil, fmt.Errorf("empty URL")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image box must be positive, got %dx%d", width, height)
	}

	key := cacheKey("png", url, width, height)
	if cached, found := imageCache.Get(key); found {
		return cached.([]byte), nil
	}

	raw, err := download(url)
	if err != nil {
		return nil, err
	}

	// imaging decodes PNG, JPG, GIF and (via the x/image side effect
	// import) WebP.
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	fitted := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	data := buf.Bytes()
	imageCache.Set(key, data, gocache.DefaultExpiration)
	return data, nil
}

// ImageRequest is one image to preload at a specific component box size.
type ImageRequest struct {
	URL    string
	Width  int
	Height int
}

// PreloadImages fetches and processes multiple images concurrently,
// returning URL -> PNG bytes for those that succeeded.
func PreloadImages(requests []ImageRequest) map[string][]byte {
	results := make(map[string][]byte)
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, 20)

	for _, req := range requests {
		if req.URL == "" {
			continue
		}
		wg.Add(1)
		go func(r ImageRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := GetImageData(r.URL, r.Width, r.Height)
			if err == nil {
				mu.Lock()
				results[r.URL] = data
				mu.Unlock()
			}
		}(req)
	}

	wg.Wait()
	return results
}

// WebPPreview returns a WebP-encoded preview of the image at url, resized
// down to maxWidth when wider. The editor's asset picker uses these instead
// of the full-resolution originals.
func WebPPreview(url string, maxWidth int) ([]byte, error) {
	Init()
	if url == "" {
		return nil, fmt.Errorf("empty URL")
	}
	if maxWidth <= 0 {
		maxWidth = 320
	}

	key := cacheKey("webp", url, maxWidth, 0)
	if cached, found := imageCache.Get(key); found {
		return cached.([]byte), nil
	}

	raw, err := download(url)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}

	data := buf.Bytes()
	imageCache.Set(key, data, gocache.DefaultExpiration)
	return data, nil
}

// Stats reports cache statistics.
func Stats() map[string]interface{} {
	Init()
	return map[string]interface{}{
		"items": imageCache.ItemCount(),
	}
}

// Clear drops all cached image data.
func Clear() {
	Init()
	imageCache.Flush()
}
