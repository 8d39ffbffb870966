package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/cwbudde/algo-redshift/internal/logging"
	"github.com/cwbudde/algo-redshift/internal/metrics"
)

var (
	// ErrFetch is returned when a download fails or answers with a non-2xx
	// status.
	ErrFetch = errors.New("fetch: download failed")
	// ErrLockTimeout is returned when the cache entry lock could not be
	// acquired in time.
	ErrLockTimeout = errors.New("fetch: timed out waiting for cache lock")
)

const (
	blobKeyPrefix = "redshift:fetch:"
	lockRetry     = 50 * time.Millisecond
)

// Result describes a fetched resource.
type Result struct {
	Path   string
	Source Source
	Bytes  int64
}

// Fetcher downloads URLs into a cache directory. It is safe for concurrent
// use.
type Fetcher struct {
	dir         string
	client      *http.Client
	cache       bool
	lockTimeout time.Duration
	blob        BlobCache
	blobTTL     time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithCache enables or disables reuse of existing cache files. Downloads
// are always written to the cache directory.
func WithCache(enabled bool) Option {
	return func(f *Fetcher) {
		f.cache = enabled
	}
}

// WithLockTimeout bounds the wait for another fetch of the same URL.
func WithLockTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.lockTimeout = d
		}
	}
}

// WithBlobCache consults b before the network and stores downloads in it
// with the given ttl.
func WithBlobCache(b BlobCache, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.blob = b
		f.blobTTL = ttl
	}
}

// WithMetrics records fetches by source.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// New returns a Fetcher caching into dir.
func New(dir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		dir:         dir,
		client:      &http.Client{Timeout: 60 * time.Second},
		cache:       true,
		lockTimeout: 30 * time.Second,
		logger:      logging.WithComponent("fetch"),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// IsRemote reports whether loc is an http or https URL.
func IsRemote(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// CacheName returns the cache file name for rawURL: the first 16 hex
// digits of its SHA-256 followed by the URL's base name.
func CacheName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))

	base := "resource"
	if u, err := url.Parse(rawURL); err == nil {
		if b := path.Base(u.Path); b != "." && b != "/" && b != "" {
			base = b
		}
	}

	return hex.EncodeToString(sum[:])[:16] + "-" + base
}

// Resolve returns loc unchanged when it is a local path and fetches it
// otherwise.
func (f *Fetcher) Resolve(ctx context.Context, loc string) (string, error) {
	if !IsRemote(loc) {
		f.record(SourceLocal, nil)
		return loc, nil
	}

	return f.Fetch(ctx, loc)
}

// Fetch returns the local path of rawURL, downloading it if necessary.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	res, err := f.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	return res.Path, nil
}

// Get is [Fetcher.Fetch] reporting where the resource came from.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (Result, error) {
	res, err := f.get(ctx, rawURL)
	f.record(res.Source, err)

	if err != nil {
		f.logger.Error("fetch failed", "url", rawURL, "error", err)
		return Result{}, err
	}

	f.logger.Debug("fetched", "url", rawURL, "source", res.Source.String(), "path", res.Path)

	return res, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (Result, error) {
	name := CacheName(rawURL)
	dst := filepath.Join(f.dir, name)

	if res, ok := f.cached(dst); ok {
		return res, nil
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return Result{Source: SourceNetwork}, fmt.Errorf("creating cache dir: %w", err)
	}

	unlock, err := f.lock(ctx, dst+".lock")
	if err != nil {
		return Result{Source: SourceNetwork}, err
	}
	defer unlock()

	// Another process may have finished the download while we waited.
	if res, ok := f.cached(dst); ok {
		return res, nil
	}

	key := blobKeyPrefix + name
	if f.blob != nil {
		data, err := f.blob.Get(ctx, key)
		switch {
		case err != nil:
			f.logger.Warn("blob cache get failed", "key", key, "error", err)
		case data != nil:
			if err := writeAtomic(f.dir, dst, data); err != nil {
				return Result{Source: SourceBlob}, err
			}
			return Result{Path: dst, Source: SourceBlob, Bytes: int64(len(data))}, nil
		}
	}

	n, err := f.download(ctx, rawURL, dst)
	if err != nil {
		return Result{Source: SourceNetwork}, err
	}

	if f.blob != nil {
		if data, err := os.ReadFile(dst); err == nil {
			if err := f.blob.Set(ctx, key, data, f.blobTTL); err != nil {
				f.logger.Warn("blob cache set failed", "key", key, "error", err)
			}
		}
	}

	return Result{Path: dst, Source: SourceNetwork, Bytes: n}, nil
}

func (f *Fetcher) cached(dst string) (Result, bool) {
	if !f.cache {
		return Result{}, false
	}

	info, err := os.Stat(dst)
	if err != nil || !info.Mode().IsRegular() {
		return Result{}, false
	}

	return Result{Path: dst, Source: SourceDisk, Bytes: info.Size()}, true
}

// lock acquires the file lock at lockPath, polling until the lock timeout
// or ctx expires.
func (f *Fetcher) lock(ctx context.Context, lockPath string) (func(), error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(f.lockTimeout)

	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquiring cache lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, lockPath)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

func (f *Fetcher) download(ctx context.Context, rawURL, dst string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: %s: status %s", ErrFetch, rawURL, resp.Status)
	}

	tmp, err := os.CreateTemp(f.dir, ".fetch-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, err
	}

	return n, nil
}

func writeAtomic(dir, dst string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dst)
}

func (f *Fetcher) record(src Source, err error) {
	if f.metrics == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	f.metrics.FetchesTotal.WithLabelValues(src.String(), status).Inc()
}
