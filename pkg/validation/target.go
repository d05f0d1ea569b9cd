// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that flow into
// probe prompts, outbound HTTP requests, and store keys. Using these
// validators prevents injection through target names and endpoint URLs.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// targetNamePattern matches valid assessment target names.
// Allows: letters, digits, spaces, dots, underscores, hyphens.
// Max length: 64 characters.
var targetNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._\-]{0,63}$`)

// ValidateTargetName validates an assessment target name.
//
// Target names are substituted into probe prompts and used in report
// details, so they must stay plain text.
//
// Valid names:
//   - 1-64 characters
//   - Letters and digits
//   - Spaces, dots (.), underscores (_), hyphens (-)
//   - Must start with a letter or digit
//
// Returns an error if the name is invalid.
func ValidateTargetName(name string) error {
	if name == "" {
		return fmt.Errorf("target name cannot be empty")
	}

	if !targetNamePattern.MatchString(name) {
		return fmt.Errorf("invalid target name: %q (must be 1-64 alphanumeric chars, spaces, dots, underscores, or hyphens)", name)
	}

	return nil
}

// SanitizeTargetName trims and validates a target name.
// Returns the trimmed name if valid, or an error if invalid.
func SanitizeTargetName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateTargetName(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// ValidateEndpointURL validates a probe endpoint URL.
//
// Only absolute http/https URLs with a host are accepted; anything else
// could redirect probes to unintended schemes or local resources.
//
// Returns an error if the URL is invalid.
func ValidateEndpointURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("endpoint url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid endpoint url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint url %q has no host", raw)
	}
	return nil
}
