// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks the identifiers that users type or load from
// registry tables.
//
// Distribution ids and parameter symbols appear on the command line, in
// log attributes and as metric label values, so they are restricted to a
// small ASCII alphabet.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches distribution ids: a lowercase letter followed by up
// to 31 lowercase letters, digits or underscores (student_t, chi2).
var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// symbolPattern matches parameter symbols: a letter followed by up to 15
// letters, digits or underscores (mu, d1, theta).
var symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,15}$`)

// ValidateID validates a distribution id.
//
// Example:
//
//	if err := validation.ValidateID(entry.ID); err != nil {
//	    return nil, fmt.Errorf("entry %d: %w", i, err)
//	}
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id format: %q (must be 1-32 lowercase letters, digits or underscores, starting with a letter)", id)
	}

	return nil
}

// ValidateSymbol validates a parameter symbol.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %q (must be 1-16 letters, digits or underscores, starting with a letter)", symbol)
	}
	return nil
}

// ValidateSymbols validates every symbol and rejects duplicates.
// Returns an error listing all offending symbols if any fail.
func ValidateSymbols(symbols []string) error {
	var invalid []string
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if err := ValidateSymbol(s); err != nil || seen[s] {
			invalid = append(invalid, s)
		}
		seen[s] = true
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid or duplicate symbols: %v", invalid)
	}
	return nil
}

// SanitizeID normalizes and validates a distribution id typed by a user.
// Returns the lowercase id if valid, or an error if invalid.
//
//	id, err := validation.SanitizeID(args[0])
//	if err != nil {
//	    return err
//	}
//	spec, err := registry.Lookup(id)
func SanitizeID(id string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if err := ValidateID(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
