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
	"math/rand"
	"strconv"
)

// Sample dataset column names.
const (
	SampleColGender     = "Gender"
	SampleColAgeGroup   = "Age_Group"
	SampleColEthnicity  = "Ethnicity"
	SampleColEducation  = "Education"
	SampleColExperience = "Experience_Years"
	SampleColApproved   = "Approved"
)

// SampleDataset generates a synthetic approval dataset with deliberately
// injected demographic bias, for demos and analyzer self-tests.
//
// The generator mirrors the dashboard's sample loan-approval data: a base
// approval probability of 0.5 is nudged +0.20 for Gender=Male, +0.10 for
// Ethnicity="Group A" and -0.15 for Ethnicity="Group D", then clipped to
// [0, 1] and drawn as a Bernoulli outcome (Approved is "1" or "0").
//
// The same n and seed always produce the same dataset.
func SampleDataset(n int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))

	ageGroups := []string{"18-25", "26-35", "36-45", "46-55", "56+"}
	educations := []string{"High School", "Bachelor", "Master", "PhD"}

	ds := &Dataset{
		Columns: []string{
			SampleColGender,
			SampleColAgeGroup,
			SampleColEthnicity,
			SampleColEducation,
			SampleColExperience,
			SampleColApproved,
		},
		Rows: make([]Row, 0, n),
	}

	for i := 0; i < n; i++ {
		gender := weightedChoice(rng, []string{"Male", "Female"}, []float64{0.52, 0.48})
		ethnicity := weightedChoice(rng,
			[]string{"Group A", "Group B", "Group C", "Group D"},
			[]float64{0.60, 0.20, 0.15, 0.05})

		prob := 0.5
		if gender == "Male" {
			prob += 0.20
		}
		switch ethnicity {
		case "Group A":
			prob += 0.10
		case "Group D":
			prob -= 0.15
		}
		if prob < 0 {
			prob = 0
		}
		if prob > 1 {
			prob = 1
		}

		approved := "0"
		if rng.Float64() < prob {
			approved = "1"
		}

		ds.Rows = append(ds.Rows, Row{
			SampleColGender:     gender,
			SampleColAgeGroup:   ageGroups[rng.Intn(len(ageGroups))],
			SampleColEthnicity:  ethnicity,
			SampleColEducation:  educations[rng.Intn(len(educations))],
			SampleColExperience: strconv.Itoa(rng.Intn(20)),
			SampleColApproved:   approved,
		})
	}
	return ds
}

// weightedChoice draws one value according to the given weights.
// Weights must sum to 1; the last value absorbs rounding drift.
func weightedChoice(rng *rand.Rand, values []string, weights []float64) string {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}
