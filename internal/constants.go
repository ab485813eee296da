/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent      = "chess-pre/0.3.0 (+https://github.com/mikeb26/chess-pre)"
	WebCacheBucket = "bopmatic-chess-pre-prod-webcache"

	// WebCacheBucketEnv overrides WebCacheBucket when set.
	WebCacheBucketEnv = "PRE_WEBCACHE_BUCKET"
)
