// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package carbon tracks the estimated carbon footprint of assessment
// activity in start/stop sessions and derives an impact report.
package carbon

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
)

// Conversion constants for the impact report.
const (
	// kgCO2PerKWh approximates grid carbon intensity.
	kgCO2PerKWh = 0.6

	// treesPerKgCO2 expresses one day of offset capacity.
	treesPerKgCO2 = 16.5
)

// Session state errors.
var (
	ErrAlreadyTracking = errors.New("a tracking session is already active")
	ErrNotTracking     = errors.New("no tracking session is active")
)

// Sampler estimates emissions for a completed session of the given
// duration, in kg CO2eq.
type Sampler interface {
	Sample(d time.Duration) float64
}

// RandomSampler draws a uniform estimate between 0.001 and 0.1 kg CO2eq
// per session, standing in for hardware power metering. Deterministic per
// seed. Safe for concurrent use.
type RandomSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSampler seeds a sampler.
func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomSampler) Sample(time.Duration) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 0.001 + s.rng.Float64()*(0.1-0.001)
}

// Tracker accumulates emission measurements over start/stop sessions.
// Safe for concurrent use. At most one session is active at a time.
type Tracker struct {
	mu      sync.Mutex
	project string
	sampler Sampler

	tracking  bool
	sessionID string
	startedAt time.Time

	measurements []datatypes.Measurement
	total        float64
}

// NewTracker builds a tracker for the given project. A nil sampler gets a
// time-seeded RandomSampler.
func NewTracker(project string, sampler Sampler) *Tracker {
	if sampler == nil {
		sampler = NewRandomSampler(time.Now().UnixNano())
	}
	return &Tracker{project: project, sampler: sampler}
}

// StartSession begins a tracking session and returns its id.
func (t *Tracker) StartSession() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking {
		return "", ErrAlreadyTracking
	}
	t.tracking = true
	t.sessionID = uuid.NewString()
	t.startedAt = time.Now().UTC()

	slog.Info("carbon tracking started", "project", t.project, "session_id", t.sessionID)
	return t.sessionID, nil
}

// StopSession ends the active session, samples its emissions, and folds
// the measurement into the running totals.
func (t *Tracker) StopSession() (datatypes.Measurement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracking {
		return datatypes.Measurement{}, ErrNotTracking
	}

	now := time.Now().UTC()
	duration := now.Sub(t.startedAt)
	m := datatypes.Measurement{
		ID:          t.sessionID,
		Project:     t.project,
		EmissionsKg: t.sampler.Sample(duration),
		StartedAt:   t.startedAt,
		StoppedAt:   now,
		DurationMs:  duration.Milliseconds(),
	}

	t.tracking = false
	t.sessionID = ""
	t.measurements = append(t.measurements, m)
	t.total += m.EmissionsKg

	slog.Info("carbon tracking stopped",
		"project", t.project, "session_id", m.ID, "emissions_kg", m.EmissionsKg)
	return m, nil
}

// Tracking reports whether a session is active.
func (t *Tracker) Tracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracking
}

// TotalEmissions returns the sum of all completed measurements in kg.
func (t *Tracker) TotalEmissions() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Measurements returns a copy of all completed measurements.
func (t *Tracker) Measurements() []datatypes.Measurement {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]datatypes.Measurement(nil), t.measurements...)
}

// Report derives the impact report from the measurements taken so far:
// energy consumption at the grid conversion factor, the one-day tree
// offset equivalent, and the mitigation catalog.
func (t *Tracker) Report() datatypes.CarbonReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	return datatypes.CarbonReport{
		Project:              t.project,
		TotalEmissionsKg:     t.total,
		EnergyConsumptionKWh: t.total / kgCO2PerKWh,
		TreesEquivalent:      t.total * treesPerKgCO2,
		Measurements:         append([]datatypes.Measurement(nil), t.measurements...),
		MitigationStrategies: MitigationCatalog(),
	}
}

// MitigationCatalog returns the recommended emission-reduction measures.
func MitigationCatalog() []datatypes.MitigationStrategy {
	return []datatypes.MitigationStrategy{
		{
			Name:             "Optimize AI Model Size",
			Description:      "Reduce model parameters and optimize architecture",
			PotentialSavings: "20-60% reduction in emissions",
			Difficulty:       "Medium",
		},
		{
			Name:             "Implement Model Distillation",
			Description:      "Create smaller, efficient versions of larger models",
			PotentialSavings: "40-80% reduction in emissions",
			Difficulty:       "High",
		},
		{
			Name:             "Use Efficient Hardware",
			Description:      "Deploy on energy-efficient hardware (e.g., specialized AI chips)",
			PotentialSavings: "30-50% reduction in emissions",
			Difficulty:       "Medium",
		},
	}
}
