// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bias

import (
	"fmt"
	"strings"
)

// SchemaError reports a referenced column that is absent from the dataset
// schema. It indicates a caller contract violation, not a transient
// condition; there is no point retrying with the same arguments.
type SchemaError struct {
	// Column is the missing column name.
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("column %q not present in dataset schema", e.Column)
}

// InvalidOutcomeCardinalityError reports an outcome column that does not
// have exactly two distinct values across the dataset, or a designated
// positive value that is not among the observed values.
//
// The check is made per call over the full dataset: cardinality is a
// property of the data, not of schema metadata.
type InvalidOutcomeCardinalityError struct {
	// Column is the outcome column that failed the check.
	Column string

	// Observed are the distinct values found, in first-seen order.
	// Truncated to at most eight entries in the message.
	Observed []string

	// Reason overrides the default message when set.
	Reason string
}

func (e *InvalidOutcomeCardinalityError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("outcome column %q: %s", e.Column, e.Reason)
	}
	shown := e.Observed
	suffix := ""
	if len(shown) > 8 {
		shown = shown[:8]
		suffix = ", ..."
	}
	return fmt.Sprintf("outcome column %q must have exactly 2 distinct values, found %d: [%s%s]",
		e.Column, len(e.Observed), strings.Join(shown, ", "), suffix)
}

// EmptyGroupError reports a degenerate partition with a zero-size group.
//
// Groups are derived from observed values, so this cannot occur for a
// well-formed dataset; it exists so a rate is never computed as 0/0 and
// silently propagated as NaN.
type EmptyGroupError struct {
	// Attribute is the protected attribute being partitioned.
	Attribute string

	// Group is the empty group's label.
	Group string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("protected attribute %q: group %q has no rows", e.Attribute, e.Group)
}
