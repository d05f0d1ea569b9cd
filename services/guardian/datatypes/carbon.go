// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "time"

// Measurement is one completed carbon tracking session.
type Measurement struct {
	ID          string    `json:"id"`
	Project     string    `json:"project"`
	EmissionsKg float64   `json:"emissions_kg"`
	StartedAt   time.Time `json:"started_at"`
	StoppedAt   time.Time `json:"stopped_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// MitigationStrategy is one recommended emission-reduction measure.
type MitigationStrategy struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	PotentialSavings string `json:"potential_savings"`
	Difficulty       string `json:"implementation_difficulty"`
}

// CarbonReport summarizes tracked emissions. Energy consumption is derived
// from emissions at 0.6 kg CO2eq per kWh; TreesEquivalent expresses one day
// of offset capacity at 16.5 trees per kg.
type CarbonReport struct {
	Project              string               `json:"project"`
	TotalEmissionsKg     float64              `json:"total_emissions_kg"`
	EnergyConsumptionKWh float64              `json:"energy_consumption_kwh"`
	TreesEquivalent      float64              `json:"trees_equivalent"`
	Measurements         []Measurement        `json:"measurements"`
	MitigationStrategies []MitigationStrategy `json:"mitigation_strategies"`
}
