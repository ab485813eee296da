/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/mikeb26/chess-pre/internal"
)

type EventID int

type Event struct {
	EndDate time.Time
	Name    string
	ID      EventID
}

type apiAffiliateEventsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		EndDate string `json:"endDate"`
	} `json:"items"`
	Offset      int  `json:"offset"`
	PageSize    int  `json:"pageSize"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPreviousPage"`
}

// GetAffiliateEvents pages through the rated events of an affiliate, most
// recent first. limit <= 0 returns every event.
func (client *Client) GetAffiliateEvents(ctx context.Context,
	affiliateCode string, limit int) ([]Event, error) {

	var events []Event
	const pageSize = 100
	offset := 0

	for {
		q := url.Values{}
		q.Set("offset", strconv.Itoa(offset))
		q.Set("pageSize", strconv.Itoa(pageSize))
		path := "/api/v1/affiliates/" + url.PathEscape(affiliateCode) +
			"/events?" + q.Encode()

		var eventsData apiAffiliateEventsResponse
		err := client.getJSON(ctx, client.httpClient1day, path,
			"affiliate events", &eventsData)
		if err != nil {
			return nil, err
		}

		for _, item := range eventsData.Items {
			idInt, err := strconv.Atoi(item.ID)
			if err != nil {
				slog.Warn("uschess.GetAffiliateEvents: skipping event with invalid id",
					"id", item.ID, "name", item.Name)
				continue
			}
			endDate, _ := internal.ParseDateOrZero(item.EndDate)
			events = append(events, Event{
				EndDate: endDate,
				Name:    item.Name,
				ID:      EventID(idInt),
			})
		}

		if !eventsData.HasNextPage || len(eventsData.Items) == 0 {
			break
		}
		if limit > 0 && len(events) >= limit {
			break
		}
		offset += pageSize
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EndDate.After(events[j].EndDate)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	return events, nil
}

func (e Event) String() string {
	if e.EndDate.IsZero() {
		return fmt.Sprintf("%v %v", e.ID, e.Name)
	}
	return fmt.Sprintf("%v %v %v", e.ID, e.EndDate.Format("2006-01-02"), e.Name)
}
