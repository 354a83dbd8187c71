// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cycle derives weekly contest cycle keys from wall-clock time using
// ISO-8601 week numbering (weeks start on Monday, week 1 contains the first
// Thursday of the year).
package cycle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidKey = errors.New("invalid cycle key")

// Key returns the cycle key for t, e.g. "2026-W42". The week is not zero
// padded. t is evaluated in UTC.
func Key(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%d", year, week)
}

// Current returns the key of the cycle containing clock().
func Current(clock func() time.Time) string {
	if clock == nil {
		clock = time.Now
	}
	return Key(clock())
}

// Parse splits a key into ISO year and week.
func Parse(key string) (year, week int, err error) {
	y, w, ok := strings.Cut(key, "-W")
	if !ok {
		return 0, 0, ErrInvalidKey
	}

	year, err = strconv.Atoi(y)
	if err != nil || year < 1 {
		return 0, 0, ErrInvalidKey
	}
	week, err = strconv.Atoi(w)
	if err != nil || week < 1 || week > weeksIn(year) {
		return 0, 0, ErrInvalidKey
	}

	return year, week, nil
}

// weeksIn returns 52 or 53. December 28 always falls in the last ISO week.
func weeksIn(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}
