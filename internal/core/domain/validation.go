package domain

import (
	"regexp"
	"strings"
)

var dialRegex = regexp.MustCompile(`^[0-9]{2,6}$`)

// IsValidDialString checks that a number is a short all-digit emergency code.
func IsValidDialString(number string) bool {
	return dialRegex.MatchString(number)
}

// ParseNumberList splits a comma separated list, keeping valid entries in order without duplicates.
func ParseNumberList(s string) []string {
	var numbers []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		n := strings.TrimSpace(part)
		if !IsValidDialString(n) || seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}
	return numbers
}
