// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// ParseID parses a non-negative decimal identifier as it appears in a URL
// path segment. Signs, blanks and values that overflow int are rejected.
//
// Example:
//
//	id, ok := utils.ParseID("10")  // 10, true
//	_, ok = utils.ParseID("-3")    // false
//	_, ok = utils.ParseID(" 10")   // false
func ParseID(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
