package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/linkpreview/internal/utils"
)

const (
	// DefaultEndpoint is the public metadata service.
	DefaultEndpoint = "https://open-apis.hax.cloud/api/services/website/metadata"
	// DefaultFetchTimeout bounds a single metadata request.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultUserAgent identifies outbound requests.
	DefaultUserAgent = "linkpreview/1.0"

	maxBodyBytes = 1 << 20
)

// Fetcher resolves a URL into display metadata.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Metadata, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, rawURL string) (Metadata, error)

func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	return f(ctx, rawURL)
}

// FetcherOptions configures an HTTPFetcher. Zero values select the defaults.
type FetcherOptions struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// HTTPFetcher queries a metadata service over HTTP:
// GET {endpoint}?q={url} -> {"data": {...}}.
type HTTPFetcher struct {
	endpoint  *url.URL
	timeout   time.Duration
	userAgent string
	client    *http.Client
}

// NewHTTPFetcher validates the endpoint and builds a fetcher.
func NewHTTPFetcher(opts FetcherOptions) (*HTTPFetcher, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}

	endpoint, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("invalid metadata endpoint scheme %q", endpoint.Scheme)
	}

	return &HTTPFetcher{
		endpoint:  endpoint,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		client:    opts.Client,
	}, nil
}

// metadataResponse is the envelope returned by the metadata service.
// Fields inside data are read leniently: non-string values count as absent.
type metadataResponse struct {
	Data map[string]any `json:"data"`
}

// Fetch issues one request for rawURL. It never retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	if rawURL == "" {
		return Metadata{}, ErrEmptyURL
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(rawURL), http.NoBody)
	if err != nil {
		return Metadata{}, &FetchError{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Metadata{}, &FetchError{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Metadata{}, &FetchError{Kind: KindHTTP, URL: rawURL, Status: resp.StatusCode}
	}

	var payload metadataResponse
	if err := decodeBody(io.LimitReader(resp.Body, maxBodyBytes), &payload); err != nil {
		// A deadline hit while reading the body is still a network failure.
		if ctx.Err() != nil {
			return Metadata{}, &FetchError{Kind: KindNetwork, URL: rawURL, Err: ctx.Err()}
		}
		return Metadata{}, &FetchError{Kind: KindDecode, URL: rawURL, Err: err}
	}
	if payload.Data == nil {
		return Metadata{}, &FetchError{Kind: KindDecode, URL: rawURL, Err: fmt.Errorf("response has no data object")}
	}

	return mapMetadata(payload.Data, rawURL), nil
}

// decodeBody decodes exactly one JSON value; anything but whitespace after
// it makes the body invalid.
func decodeBody(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after JSON body")
		}
		return err
	}
	return nil
}

func (f *HTTPFetcher) requestURL(rawURL string) string {
	u := *f.endpoint
	q := u.Query()
	q.Set("q", rawURL)
	u.RawQuery = q.Encode()
	return u.String()
}

// mapMetadata applies the field precedence rules:
// link falls back to the requested URL, image prefers og:image, then
// apple-touch-icon, then image.
func mapMetadata(data map[string]any, requested string) Metadata {
	link := stringField(data, "url")
	if link == "" {
		link = requested
	}
	return Metadata{
		Title:       stringField(data, "title"),
		Description: stringField(data, "description"),
		Link:        link,
		Image: firstNonEmpty(
			stringField(data, "og:image"),
			stringField(data, "apple-touch-icon"),
			stringField(data, "image"),
		),
	}
}

func stringField(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
