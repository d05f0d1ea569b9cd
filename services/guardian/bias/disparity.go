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

// AnalysisRequest names the columns a disparity analysis runs over.
type AnalysisRequest struct {
	// ProtectedAttributes are the categorical columns to partition by.
	// Each attribute is analyzed independently; no intersectional
	// combinations are formed. An empty set yields an empty result.
	ProtectedAttributes []string `json:"protected_attributes"`

	// OutcomeColumn is the binary outcome column. It must contain exactly
	// two distinct values across the dataset.
	OutcomeColumn string `json:"outcome_column" binding:"required"`

	// PositiveValue optionally designates which outcome value counts as
	// positive. When empty, the larger of the two observed values is used
	// (numeric comparison when both parse as numbers, lexicographic
	// otherwise). The resolved value is echoed in every result.
	PositiveValue string `json:"positive_value,omitempty"`
}

// AttributeDisparity is the disparity result for one protected attribute.
//
// Outcomes maps each group label to its positive-outcome rate. Disparities
// maps each group label to baseline minus its rate, where baseline is the
// maximum rate over the attribute's groups; the best group's disparity is
// always exactly 0 and every disparity is >= 0. MaxDisparity is the largest
// disparity across groups.
type AttributeDisparity struct {
	Outcomes      map[string]float64 `json:"outcomes"`
	Disparities   map[string]float64 `json:"disparities"`
	MaxDisparity  float64            `json:"max_disparity"`
	PositiveValue string             `json:"positive_value"`
	GroupSizes    map[string]int     `json:"group_sizes"`
}

// Analyze computes per-group positive-outcome rates and disparities for
// each protected attribute independently.
//
// Description:
//
//	For every protected attribute the dataset rows are partitioned by the
//	attribute's value (exhaustive and disjoint: each row lands in exactly
//	one group, singleton groups included). Each group's positive-outcome
//	rate is computed against the resolved positive value, the maximum rate
//	becomes the baseline, and each group's disparity is the gap below that
//	baseline.
//
//	Analyze is pure: the dataset is never mutated, no state is carried
//	between calls, and identical inputs produce identical results.
//	Concurrent calls on independent datasets need no coordination.
//
// Inputs:
//
//	ds - The dataset to analyze. Must not be nil.
//	req - Column designations. See AnalysisRequest.
//
// Outputs:
//
//	map[string]AttributeDisparity - One entry per protected attribute.
//	error - *SchemaError if the outcome column or any protected attribute
//	    is absent; *InvalidOutcomeCardinalityError if the outcome column
//	    does not have exactly two distinct values (or the designated
//	    positive value is not observed); *EmptyGroupError on a degenerate
//	    partition. On error no partial result is returned.
func Analyze(ds *Dataset, req AnalysisRequest) (map[string]AttributeDisparity, error) {
	if !ds.HasColumn(req.OutcomeColumn) {
		return nil, &SchemaError{Column: req.OutcomeColumn}
	}
	for _, attr := range req.ProtectedAttributes {
		if !ds.HasColumn(attr) {
			return nil, &SchemaError{Column: attr}
		}
	}

	observed, err := ds.DistinctValues(req.OutcomeColumn)
	if err != nil {
		return nil, err
	}
	if len(observed) != 2 {
		return nil, &InvalidOutcomeCardinalityError{
			Column:   req.OutcomeColumn,
			Observed: sortedCopy(observed),
		}
	}
	positive, err := positiveValue(req.OutcomeColumn, req.PositiveValue, observed)
	if err != nil {
		return nil, err
	}

	results := make(map[string]AttributeDisparity, len(req.ProtectedAttributes))
	for _, attr := range req.ProtectedAttributes {
		res, err := analyzeAttribute(ds, attr, req.OutcomeColumn, positive)
		if err != nil {
			return nil, err
		}
		results[attr] = res
	}
	return results, nil
}

// analyzeAttribute computes the disparity result for a single protected
// attribute. Callers have already validated the schema and outcome column.
func analyzeAttribute(ds *Dataset, attr, outcomeColumn, positive string) (AttributeDisparity, error) {
	sizes := make(map[string]int)
	positives := make(map[string]int)
	for _, row := range ds.Rows {
		group := row[attr]
		sizes[group]++
		if row[outcomeColumn] == positive {
			positives[group]++
		}
	}

	outcomes := make(map[string]float64, len(sizes))
	baseline := 0.0
	for group, size := range sizes {
		if size == 0 {
			return AttributeDisparity{}, &EmptyGroupError{Attribute: attr, Group: group}
		}
		rate := float64(positives[group]) / float64(size)
		outcomes[group] = rate
		if rate > baseline {
			baseline = rate
		}
	}

	disparities := make(map[string]float64, len(outcomes))
	maxDisparity := 0.0
	for group, rate := range outcomes {
		d := baseline - rate
		disparities[group] = d
		if d > maxDisparity {
			maxDisparity = d
		}
	}

	return AttributeDisparity{
		Outcomes:      outcomes,
		Disparities:   disparities,
		MaxDisparity:  maxDisparity,
		PositiveValue: positive,
		GroupSizes:    sizes,
	}, nil
}
