package trirast

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// FetchTriangles loads the triangles file at src, which may be an http(s) URL,
// a file:// URL or a plain path. Remote reads give up after timeout.
func FetchTriangles(ctx context.Context, src string, timeout time.Duration, logger Logger) ([]TriangleSet, error) {
	logger = orNop(logger)
	if src == "" {
		return nil, fmt.Errorf("%w: empty source", ErrFetch)
	}

	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return fetchHTTP(ctx, src, timeout, logger)
	}

	path := src
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer f.Close()

	sets, err := DecodeTriangles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Infof("loaded %d triangle sets from %s", len(sets), path)
	return sets, nil
}

func fetchHTTP(ctx context.Context, src string, timeout time.Duration, logger Logger) ([]TriangleSet, error) {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrFetch, resp.StatusCode, src)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") && !strings.HasPrefix(ct, "text/") {
		logger.Warnf("unexpected content type %q from %s", ct, src)
	}

	sets, err := DecodeTriangles(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	logger.Infof("loaded %d triangle sets from %s in %v", len(sets), src, time.Since(start).Round(time.Millisecond))
	return sets, nil
}
