// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// number. Query-string pagination parameters go through this so a garbled
// ?page= never surfaces as a handler error.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// TotalPages returns the number of pages needed to hold total items at
// pageSize items per page, rounding up. A non-positive pageSize or total
// yields 0 so callers can derive has-next as page < TotalPages without
// special cases.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
