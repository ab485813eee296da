/* Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 */
package s3cache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/gregjones/httpcache/test"
)

func testBucket(t *testing.T) string {
	bucket := os.Getenv("PRE_WEBCACHE_BUCKET")
	if bucket == "" {
		t.Skip("Skipping test because PRE_WEBCACHE_BUCKET is unset")
	}
	return bucket
}

func TestS3Cache(t *testing.T) {
	cache := New(context.Background(), Options{
		Bucket:    testBucket(t),
		Prefix:    "s3cache-test",
		LogErrors: true,
	})
	err := cache.Init()
	if err != nil {
		t.Skip(fmt.Sprintf("Skipping test due to lack of access to %v: %v",
			cache.Bucket(), err))
	}

	test.Cache(t, cache)
}

func TestS3CacheWithGzip(t *testing.T) {
	cache := New(context.Background(), Options{
		Bucket:    testBucket(t),
		Prefix:    "s3cache-test",
		Gzip:      true,
		LogErrors: true,
	})
	err := cache.Init()
	if err != nil {
		t.Skip(fmt.Sprintf("Skipping test due to lack of access to %v: %v",
			cache.Bucket(), err))
	}

	test.Cache(t, cache)
}

func TestObjectKey(t *testing.T) {
	plain := New(context.Background(), Options{Bucket: "b"})
	key := plain.cacheKeyToObjectKey("https://ratings-api.uschess.org/x")
	if !strings.HasPrefix(key, "/"+DefaultPrefix+"/") {
		t.Fatalf("unexpected key %v", key)
	}
	if key != plain.cacheKeyToObjectKey("https://ratings-api.uschess.org/x") {
		t.Fatalf("object key is not stable")
	}

	gz := New(context.Background(), Options{Bucket: "b", Prefix: "p", Gzip: true})
	gzKey := gz.cacheKeyToObjectKey("https://ratings-api.uschess.org/x")
	if !strings.HasPrefix(gzKey, "/p/") || !strings.HasSuffix(gzKey, ".gz") {
		t.Fatalf("unexpected gzip key %v", gzKey)
	}
}
