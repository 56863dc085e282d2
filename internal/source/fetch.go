package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-marker-mcp/internal/imaging"
)

// FetchOptions tunes the Fetcher.
type FetchOptions struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	MaxBytes   int64
	UserAgent  string
}

// DefaultFetchOptions are used for zero fields.
var DefaultFetchOptions = FetchOptions{
	Timeout:    10 * time.Second,
	Retries:    3,
	RetryDelay: 200 * time.Millisecond,
	MaxBytes:   32 << 20,
	UserAgent:  "image-marker/1.0",
}

// Fetcher is the acquisition service for remote, file and inline data URIs.
type Fetcher struct {
	client *http.Client
	cache  Cache
	opts   FetchOptions
	log    logrus.FieldLogger
}

// NewFetcher creates a fetcher. cache may be nil.
func NewFetcher(opts FetchOptions, cache Cache, log logrus.FieldLogger) *Fetcher {
	d := DefaultFetchOptions
	if opts.Timeout <= 0 {
		opts.Timeout = d.Timeout
	}
	if opts.Retries <= 0 {
		opts.Retries = d.Retries
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = d.RetryDelay
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = d.MaxBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = d.UserAgent
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		cache:  cache,
		opts:   opts,
		log:    log,
	}
}

// Fetch implements Acquirer.
func (f *Fetcher) Fetch(ctx context.Context, uri string) (image.Image, error) {
	var (
		body []byte
		err  error
	)
	switch Classify(uri) {
	case KindRemote:
		body, err = f.remote(ctx, uri)
	case KindEmbeddedFile:
		body, err = readFileURI(uri, f.opts.MaxBytes)
	case KindInlineData:
		body, err = decodeDataURI(uri)
	default:
		return nil, fmt.Errorf("%q is not a fetchable uri", abbreviate(uri))
	}
	if err != nil {
		return nil, err
	}

	r, err := imaging.DecodeBytes(body)
	if err != nil {
		return nil, err
	}
	return r.Image(), nil
}

func (f *Fetcher) remote(ctx context.Context, uri string) ([]byte, error) {
	if f.cache != nil {
		body, ok, err := f.cache.Get(ctx, uri)
		if err != nil {
			f.log.WithError(err).Warn("fetch cache read failed")
		} else if ok {
			return body, nil
		}
	}

	body, err := f.download(ctx, uri)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, uri, body); err != nil {
			f.log.WithError(err).Warn("fetch cache write failed")
		}
	}
	return body, nil
}

// download GETs uri, retrying transport errors and 404s.
func (f *Fetcher) download(ctx context.Context, uri string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < f.opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch %s: %w", uri, ctx.Err())
			case <-time.After(f.opts.RetryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			lastErr = fmt.Errorf("http status %s", resp.Status)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			resp.Body.Close()
			return nil, fmt.Errorf("http status %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
		}

		body, err := readLimited(resp.Body, f.opts.MaxBytes)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		f.log.WithFields(logrus.Fields{"uri": uri, "bytes": len(body), "attempt": attempt + 1}).Debug("fetched image")
		return body, nil
	}

	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", uri, f.opts.Retries, lastErr)
}

var errTooLarge = errors.New("image exceeds size limit")

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errTooLarge
	}
	return body, nil
}

func readFileURI(uri string, limit int64) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse file uri: %w", err)
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	return readLimited(fh, limit)
}

// decodeDataURI extracts the payload of data:image/<fmt>;base64,<payload>.
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, errors.New("data uri has no payload")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, errors.New("data uri is not base64 encoded")
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		body, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return body, nil
}
