/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pre

import "math"

// Estimate is one rating estimate; Valid is false when the solver could not
// produce a value.
type Estimate struct {
	Value float64
	Valid bool
}

func validEstimate(v float64) Estimate {
	return Estimate{Value: v, Valid: true}
}

// Rounded returns the estimate rounded to a whole rating point.
func (e Estimate) Rounded() int {
	return int(math.Round(e.Value))
}

// Series is the ordered history of a player's rating estimates. Index 0 is
// the seed; index i is the output of iteration i.
type Series struct {
	values []Estimate
}

func newSeries(seed float64) *Series {
	return &Series{values: []Estimate{validEstimate(seed)}}
}

func (s *Series) append(e Estimate) {
	s.values = append(s.values, e)
}

func (s *Series) Len() int {
	return len(s.values)
}

func (s *Series) At(i int) Estimate {
	return s.values[i]
}

func (s *Series) Latest() Estimate {
	return s.values[len(s.values)-1]
}

// Previous returns the estimate before Latest; ok is false for a series
// holding only its seed.
func (s *Series) Previous() (e Estimate, ok bool) {
	if len(s.values) < 2 {
		return Estimate{}, false
	}
	return s.values[len(s.values)-2], true
}

// Settled reports whether the last two estimates are valid and equal once
// rounded.
func (s *Series) Settled() bool {
	prev, ok := s.Previous()
	if !ok {
		return false
	}
	latest := s.Latest()
	return prev.Valid && latest.Valid && prev.Rounded() == latest.Rounded()
}
