/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mikeb26/chess-pre/internal"
	"github.com/mikeb26/chess-pre/uschess"
)

// this program exists just to seed the http cache with the crosstables of
// affiliates' recent events

func main() {
	affiliates := flag.String("uscfaid", "", "Comma separated US Chess affiliate ids")
	limit := flag.Int("limit", 50, "Events per affiliate (0 for all)")
	delay := flag.Duration("delay", 2*time.Second, "Pause between requests")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	internal.InitLogging(*verbose)
	if *affiliates == "" {
		flag.Usage()
		os.Exit(1)
	}
	if internal.CacheBucket() == "" {
		slog.Warn("cacheseed: no cache bucket configured; seeding an in-memory cache",
			"env", internal.WebCacheBucketEnv)
	}

	ctx := context.Background()
	client := uschess.NewClient(ctx)
	for _, aid := range strings.Split(*affiliates, ",") {
		seedAffiliate(ctx, client, strings.TrimSpace(aid), *limit, *delay)
	}
}

func seedAffiliate(ctx context.Context, client *uschess.Client, aid string,
	limit int, delay time.Duration) {

	events, err := client.GetAffiliateEvents(ctx, aid, limit)
	if err != nil {
		// best effort
		slog.Warn("cacheseed: unable to list events", "affiliate", aid,
			"err", err)
		return
	}
	for _, event := range events {
		_, err := client.FetchCrossTables(ctx, event.ID)
		time.Sleep(delay) // avoid pegging uschess.org
		if err != nil {
			// best effort
			slog.Warn("cacheseed: unable to fetch event", "event", event.ID,
				"err", err)
			continue
		}

		fmt.Printf("seeded ev:%v\n", event)
	}
}
