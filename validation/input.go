// Package validation checks user input at the HTTP boundary and reports the
// data quality of every freshly built snapshot.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxQueryLength = 100
	maxQueryWords  = 8
)

// Substring checks are cheaper than a regex for these.
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
	"eval(", "expression(", "@import",
	"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
	"--", "/*", "*/",
	"$(", "${", "`",
	"../", "..\\", "%2e%2e", "file://",
	"{$ne:", "{$gt:", "{$where:", "{$regex:",
}

// ValidateQuery accepts letters of any script, digits, spaces and the
// punctuation found in drug labels.
func ValidateQuery(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("input cannot be empty")
	}
	if len([]rune(trimmed)) > maxQueryLength {
		return fmt.Errorf("input too long: maximum %d characters", maxQueryLength)
	}
	if len(strings.Fields(trimmed)) > maxQueryWords {
		return fmt.Errorf("search query too complex: maximum %d words allowed", maxQueryWords)
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		if !strings.ContainsRune("-.,'+/%()", r) {
			return fmt.Errorf("input contains invalid character %q", r)
		}
	}

	if hasExcessiveRepetition(trimmed) {
		return fmt.Errorf("input contains excessive character repetition")
	}
	return nil
}

// ValidateCIS checks an 8 digit specialite identifier.
func ValidateCIS(input string) error {
	return validateDigits(input, "CIS", 8)
}

// ValidateCIP checks a 7 or 13 digit presentation code.
func ValidateCIP(input string) error {
	return validateDigits(input, "CIP", 7, 13)
}

// ValidateGroupID checks a generic group identifier: digits only.
func ValidateGroupID(input string) error {
	return validateDigits(input, "group id")
}

func validateDigits(input, what string, lengths ...int) error {
	if input == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return fmt.Errorf("%s must only contain digits", what)
		}
	}
	if len(lengths) == 0 {
		return nil
	}
	for _, n := range lengths {
		if len(input) == n {
			return nil
		}
	}
	return fmt.Errorf("%s should have %s digits", what, joinLengths(lengths))
}

func joinLengths(lengths []int) string {
	parts := make([]string, len(lengths))
	for i, n := range lengths {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " or ")
}

// hasExcessiveRepetition flags the same character repeated more than 10 times.
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for _, r := range input {
		if r == prev {
			run++
			if run > 10 {
				return true
			}
			continue
		}
		prev, run = r, 1
	}
	return false
}
