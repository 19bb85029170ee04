package psd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	psdlib "github.com/oov/psd"
)

// ErrSourceUnavailable is returned (wrapped) whenever the document cannot be read or decoded.
var ErrSourceUnavailable = errors.New("document source unavailable")

// Decode parses a PSD/PSB byte stream into a Document.
// Layer pixels stay in memory and are handed out lazily through each Layer's Raster.
func Decode(r io.Reader, name string) (*Document, error) {
	img, _, err := psdlib.Decode(r, &psdlib.DecodeOptions{SkipMergedImage: true})
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrSourceUnavailable, name, err)
	}

	doc := &Document{
		Name:   name,
		Width:  img.Config.Rect.Dx(),
		Height: img.Config.Rect.Dy(),
		Root:   &Root{Children: convertLayers(img.Layer)},
	}
	return doc, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte, name string) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrSourceUnavailable, name)
	}
	return Decode(bytes.NewReader(data), name)
}

// Open reads and decodes a document from the local filesystem.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()

	return Decode(f, DocumentName(path))
}

// DocumentName derives a display name from a path or URL: the base name without extension.
func DocumentName(input string) string {
	if i := strings.IndexAny(input, "?#"); i >= 0 {
		input = input[:i]
	}
	base := filepath.Base(filepath.FromSlash(input))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "document"
	}
	return name
}

func convertLayers(layers []psdlib.Layer) []Node {
	nodes := make([]Node, 0, len(layers))
	for i := range layers {
		l := &layers[i]
		if l.Folder() {
			nodes = append(nodes, &Group{
				Name:     l.Name,
				Visible:  l.Visible(),
				Children: convertLayers(l.Layer),
			})
			continue
		}
		nodes = append(nodes, &Layer{
			Name:    l.Name,
			Visible: l.Visible(),
			Bounds:  l.Rect,
			Raster:  layerRaster{l},
		})
	}
	return nodes
}

// layerRaster exposes the decoded channels of a psd layer as an image.
type layerRaster struct {
	layer *psdlib.Layer
}

func (r layerRaster) Surface() (image.Image, error) {
	if !r.layer.HasImage() || r.layer.Picker == nil {
		return nil, nil
	}
	return r.layer.Picker, nil
}

// Client downloads remote documents. It retries on transport errors, 429 and 5xx responses.
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a Client with connection pooling and a generous timeout for large files.
func NewClient() *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		maxRetries: 3,
		backoff:    2 * time.Second,
	}
}

var remoteRe = regexp.MustCompile(`^https?://[^/\s]+`)

// IsRemote reports whether input looks like an http(s) URL rather than a local path.
func IsRemote(input string) bool {
	return remoteRe.MatchString(input)
}

// Fetch downloads the document at url and decodes it.
func (c *Client) Fetch(ctx context.Context, url string) (*Document, error) {
	data, err := c.download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return DecodeBytes(data, DocumentName(url))
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		body, retry, err := c.do(req)
		if err == nil {
			return body, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
		if !retry || attempt == c.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}

	return nil, lastErr
}

// do performs a single request. The bool result tells the caller whether the failure is retryable.
func (c *Client) do(req *http.Request) ([]byte, bool, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, false, nil
}
