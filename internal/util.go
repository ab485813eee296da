/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// ParseDateOrZero returns a parsed time or zero if input is empty or "null".
func ParseDateOrZero(s string) (time.Time, error) {
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(s)
}

// NormalizeName collapses whitespace and title-cases each word of an
// upper-cased name such as "MAGNUS  CARLSEN". Mixed case input is preserved
// aside from whitespace.
func NormalizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		if strings.ToUpper(w) != w {
			continue
		}
		runes := []rune(strings.ToLower(w))
		capNext := true
		for j, r := range runes {
			if capNext && unicode.IsLetter(r) {
				runes[j] = unicode.ToUpper(r)
				capNext = false
			} else if r == '-' || r == '\'' {
				capNext = true
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ScoreToString renders a chess score using ½ for half points, e.g. 2.5 ->
// "2½" and 0.5 -> "½".
func ScoreToString(score float64) string {
	whole := math.Floor(score)
	if score-whole < 0.25 {
		return strconv.Itoa(int(whole))
	}
	if whole == 0 {
		return "½"
	}
	return strconv.Itoa(int(whole)) + "½"
}

// ParseScore is the inverse of ScoreToString and also accepts decimal and
// "1/2" notation.
func ParseScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	half := 0.0
	if strings.HasSuffix(s, "½") {
		half = 0.5
		s = strings.TrimSuffix(s, "½")
	} else if strings.HasSuffix(s, "1/2") {
		half = 0.5
		s = strings.TrimSuffix(s, "1/2")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return half, half != 0
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v + half, true
}
