/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/mikeb26/chess-pre/s3cache"
)

// CacheBucket returns the S3 bucket backing the web cache.
func CacheBucket() string {
	if b := os.Getenv(WebCacheBucketEnv); b != "" {
		return b
	}
	return WebCacheBucket
}

// NewCachedHttpClient returns an http.Client that caches via S3-backed
// httpcache. If the S3 cache cannot be initialized it falls back to an
// in-memory cache. Origin cache headers are rewritten to enforce maxAge.
func NewCachedHttpClient(ctx context.Context, maxAge time.Duration) *http.Client {
	var cache httpcache.Cache
	s3c := s3cache.New(ctx, s3cache.Options{
		Bucket:    CacheBucket(),
		LogErrors: true,
	})
	if err := s3c.Init(); err != nil {
		slog.Warn("httpcache: failed to init S3 cache; using in-memory cache",
			"bucket", CacheBucket(), "err", err)
		cache = httpcache.NewMemoryCache()
	} else {
		cache = s3c
	}

	return newCachedHttpClient(cache, http.DefaultTransport, maxAge)
}

func newCachedHttpClient(cache httpcache.Cache, rt http.RoundTripper,
	maxAge time.Duration) *http.Client {

	hc := httpcache.NewTransport(cache)
	// origin responses may forbid caching; override them with our own TTL
	hc.Transport = &HeaderOverrideTransport{
		wrappedRT: rt,
		Response: func(resp *http.Response) error {
			resp.Header.Del("Pragma")
			resp.Header.Del("Expires")
			resp.Header.Del("Cache-Control")
			resp.Header.Set("Cache-Control",
				fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
			return nil
		},
	}

	return &http.Client{Transport: hc}
}

type HeaderOverrideTransport struct {
	Request  func(req *http.Request)
	Response func(resp *http.Response) error

	// Underlying RoundTripper (e.g. default transport or another decorator)
	wrappedRT http.RoundTripper
}

// RoundTrip applies Request and Response hooks around the underlying transport.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don’t stomp on the caller’s original
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}

	resp, err := t.wrappedRT.RoundTrip(req2)
	if err != nil {
		return nil, err
	}

	if t.Response != nil {
		if err := t.Response(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
