/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/mikeb26/chess-pre/uschess"
)

func handleCrossTable(ctx context.Context, args []string) {
	fs, verbose := newFlagSet("crosstable")
	eventID := fs.Int("uscfeid", 0, "US Chess event id")
	section := fs.String("section", "", "Only this section of the event")
	parseFlags(fs, verbose, args)

	if *eventID == 0 {
		log.Fatalf("Error: -uscfeid is required")
	}

	client := uschess.NewClient(ctx)
	tourney, err := client.FetchCrossTables(ctx, uschess.EventID(*eventID))
	if err != nil {
		log.Fatalf("Error fetching crosstables: %v", err)
	}

	fmt.Printf("%v\n\n", tourney.Event)
	for _, xt := range tourney.CrossTables {
		if *section != "" {
			if match, ok := tourney.Section(*section); !ok || match != xt {
				continue
			}
		}
		fmt.Print(uschess.BuildCrossTableOutput(xt, true))
	}
}

func handleEvents(ctx context.Context, args []string) {
	fs, verbose := newFlagSet("events")
	affiliate := fs.String("uscfaid", "", "US Chess affiliate id")
	limit := fs.Int("limit", 20, "Maximum number of events (0 for all)")
	parseFlags(fs, verbose, args)

	if *affiliate == "" {
		log.Fatalf("Error: -uscfaid is required")
	}

	client := uschess.NewClient(ctx)
	events, err := client.GetAffiliateEvents(ctx, *affiliate, *limit)
	if err != nil {
		log.Fatalf("Error fetching events: %v", err)
	}
	if len(events) == 0 {
		fmt.Printf("No rated events found for %v.\n", *affiliate)
		return
	}
	for _, ev := range events {
		fmt.Println(ev)
	}
}
