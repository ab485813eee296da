/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package uschess reads rated events from the US Chess ratings API and turns
// their section standings into rosters for the equilibrium solver.
package uschess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mikeb26/chess-pre/internal"
)

const DefaultBaseURL = "https://ratings-api.uschess.org"

type Client struct {
	baseURL         string
	httpClient30day *http.Client
	httpClient1day  *http.Client
}

// NewClient returns a client whose requests are cached: event standings for
// 30 days and affiliate event lists for 1 day.
func NewClient(ctx context.Context) *Client {
	return &Client{
		baseURL:         DefaultBaseURL,
		httpClient30day: internal.NewCachedHttpClient(ctx, 30*24*time.Hour),
		httpClient1day:  internal.NewCachedHttpClient(ctx, 24*time.Hour),
	}
}

// NewClientWithHTTP returns an uncached client talking to baseURL through hc.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient30day: hc,
		httpClient1day:  hc,
	}
}

// getJSON fetches path relative to the API base and decodes the response into
// out.
func (client *Client) getJSON(ctx context.Context, hc *http.Client,
	path string, what string, out any) error {

	req, err := http.NewRequestWithContext(ctx, "GET", client.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("unable to create %v request: %w", what, err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("unable to fetch %v: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected %v status %d: %s", what,
			resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %v JSON: %w", what, err)
	}

	return nil
}
