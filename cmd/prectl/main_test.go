/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikeb26/chess-pre/perf"
	"github.com/mikeb26/chess-pre/pre"
)

const testRosterJSON = `{
	"players": [
		{"id": "a", "name": "Alice", "rating": 2000,
		 "games": [{"opponent": "b", "result": 1}, {"opponent": "c", "result": 0}]},
		{"id": "b", "name": "Bob", "rating": 1900,
		 "games": [{"opponent": "a", "result": 0}, {"opponent": "c", "result": 1}]},
		{"id": "c", "name": "Carol", "rating": 1800,
		 "games": [{"opponent": "b", "result": 0}, {"opponent": "a", "result": 1}]}
	]
}`

func TestParseRatings(t *testing.T) {
	ratings, err := parseRatings("2718, 2657 unr,0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{2718, 2657, perf.Unrated, perf.Unrated}
	if len(ratings) != len(want) {
		t.Fatalf("got %v want %v", ratings, want)
	}
	for i := range want {
		if ratings[i] != want[i] {
			t.Fatalf("got %v want %v", ratings, want)
		}
	}

	if _, err := parseRatings(" , "); !errors.Is(err, perf.ErrInputEmpty) {
		t.Errorf("expected ErrInputEmpty, got %v", err)
	}
	if _, err := parseRatings("2700,abc"); !errors.Is(err, perf.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := parseRatings("-5"); !errors.Is(err, perf.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a negative rating, got %v", err)
	}
}

func TestWriteCPR(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCPR(&buf, 2700, 10, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Score: 10 / 10 against 2700 average",
		"CPR: 3282", "Linear: 3100"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	buf.Reset()
	if err := writeCPRForRatings(&buf, []float64{1400, perf.Unrated, 1600}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the unrated opponent counts as a 1500 game: 1 / 3, not 1 / 2
	for _, want := range []string{"Score: 1 / 3 against 1500 average",
		"CPR: 1382"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q missing %q", buf.String(), want)
		}
	}

	if err := writeCPRForRatings(&buf, []float64{perf.Unrated}, 1); !errors.Is(err, perf.ErrInputEmpty) {
		t.Errorf("expected ErrInputEmpty, got %v", err)
	}
}

func TestWritePerf(t *testing.T) {
	var buf bytes.Buffer
	err := writePerf(&buf, perf.DefaultOptions(), []float64{1400, 1600}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Performance (exact): 1500", "CPR: 1500",
		"TPR: 1500", "FIDE: 1500"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	// TPR is undefined for a perfect score
	buf.Reset()
	err = writePerf(&buf, perf.DefaultOptions(), []float64{1400, 1600}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "TPR: -") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	err = writePerf(&buf, perf.DefaultOptions(), []float64{2000, perf.Unrated}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Score: 1 / 2 against 2000 average",
		"Performance (exact): 2000", "CPR: 2000"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q missing %q", buf.String(), want)
		}
	}

	opts := perf.DefaultOptions()
	opts.High = opts.Low
	if err := writePerf(&buf, opts, []float64{1500}, 1); !errors.Is(err, perf.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWriteBest(t *testing.T) {
	for _, exhaustive := range []bool{false, true} {
		var buf bytes.Buffer
		err := writeBest(context.Background(), &buf,
			[]float64{1500, 2000, 1800}, exhaustive)
		if err != nil {
			t.Fatalf("exhaustive=%v: unexpected error: %v", exhaustive, err)
		}
		out := buf.String()
		if !strings.Contains(out, "Best perfect score: 2382") ||
			!strings.Contains(out, "Opponents: 2000\n") {
			t.Errorf("exhaustive=%v: unexpected output %q", exhaustive, out)
		}
	}
}

func TestWriteThreshold(t *testing.T) {
	var buf bytes.Buffer
	if err := writeThreshold(&buf, 2700, 10, 10, 0.75); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Score: 10 / 10", "Threshold: 0.75",
		"w*: ", "w*+: ", "Tournament performance (TPR): -",
		"FIDE performance: 3500"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	// half points are doubled into whole trials
	buf.Reset()
	if err := writeThreshold(&buf, 2700, 6.5, 9, 0.75); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Score: 13 / 18") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLoadRosters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cycle.json")
	if err := os.WriteFile(path, []byte(testRosterJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	rosters, err := loadRosters(context.Background(),
		rosterSource{rosterPath: path}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rosters) != 1 || rosters[0].Event != "cycle" ||
		len(rosters[0].Players) != 3 {
		t.Fatalf("unexpected rosters %+v", rosters)
	}

	_, err = loadRosters(context.Background(), rosterSource{}, nil)
	if err == nil {
		t.Errorf("expected an error without a source")
	}
	_, err = loadRosters(context.Background(),
		rosterSource{rosterPath: path, pgnPath: dir}, nil)
	if err == nil {
		t.Errorf("expected an error with two sources")
	}
}

func TestRunPre(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cycle.json")
	if err := os.WriteFile(path, []byte(testRosterJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	roster, err := readRosterJSON(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	empty := &pre.Roster{Event: "empty"}

	results, err := runPre(context.Background(), pre.DefaultConfig(),
		[]*pre.Roster{roster, empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || !results[0].Converged {
		t.Fatalf("unexpected results %+v", results)
	}
	for _, pr := range results[0].Players {
		if pr.PRE != 1900 {
			t.Errorf("%v: PRE %v want 1900", pr.Name, pr.PRE)
		}
	}

	var buf bytes.Buffer
	if err := writeResultsJSON(&buf, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"pre": 1900`) {
		t.Errorf("unexpected JSON %q", buf.String())
	}

	csvPath := filepath.Join(dir, "out.csv")
	if err := writeResultsCSV(csvPath, append(results, results[0])); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"out-1.csv", "out-2.csv"} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected %v: %v", name, err)
		}
		records, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil || len(records) != 4 {
			t.Fatalf("%v: %v records, err %v", name, len(records), err)
		}
	}

	if _, err := runPre(context.Background(), pre.DefaultConfig(),
		[]*pre.Roster{empty}); !errors.Is(err, perf.ErrInputEmpty) {
		t.Errorf("expected ErrInputEmpty, got %v", err)
	}
}
