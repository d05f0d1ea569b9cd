// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package carbon

import (
	"errors"
	"math"
	"testing"
	"time"
)

// fixedSampler returns a constant emission estimate.
type fixedSampler struct {
	value float64
}

func (s fixedSampler) Sample(time.Duration) float64 { return s.value }

func TestTracker_SessionLifecycle(t *testing.T) {
	tr := NewTracker("impactguard", fixedSampler{value: 0.05})

	id, err := tr.StartSession()
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}
	if !tr.Tracking() {
		t.Error("Tracking() = false during a session")
	}

	m, err := tr.StopSession()
	if err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	if m.ID != id {
		t.Errorf("measurement id = %q, want session id %q", m.ID, id)
	}
	if m.EmissionsKg != 0.05 {
		t.Errorf("EmissionsKg = %v, want 0.05", m.EmissionsKg)
	}
	if m.Project != "impactguard" {
		t.Errorf("Project = %q", m.Project)
	}
	if tr.Tracking() {
		t.Error("Tracking() = true after stop")
	}
}

func TestTracker_SessionStateErrors(t *testing.T) {
	tr := NewTracker("p", fixedSampler{value: 0.01})

	if _, err := tr.StopSession(); !errors.Is(err, ErrNotTracking) {
		t.Errorf("StopSession without start = %v, want ErrNotTracking", err)
	}

	if _, err := tr.StartSession(); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := tr.StartSession(); !errors.Is(err, ErrAlreadyTracking) {
		t.Errorf("second StartSession = %v, want ErrAlreadyTracking", err)
	}
}

func TestTracker_Totals(t *testing.T) {
	tr := NewTracker("p", fixedSampler{value: 0.4})

	for i := 0; i < 3; i++ {
		if _, err := tr.StartSession(); err != nil {
			t.Fatalf("StartSession failed: %v", err)
		}
		if _, err := tr.StopSession(); err != nil {
			t.Fatalf("StopSession failed: %v", err)
		}
	}

	if got := tr.TotalEmissions(); math.Abs(got-1.2) > 1e-9 {
		t.Errorf("TotalEmissions = %v, want 1.2", got)
	}
	if got := len(tr.Measurements()); got != 3 {
		t.Errorf("Measurements = %d, want 3", got)
	}
}

func TestTracker_Report(t *testing.T) {
	tr := NewTracker("p", fixedSampler{value: 0.6})
	if _, err := tr.StartSession(); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := tr.StopSession(); err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}

	report := tr.Report()
	if math.Abs(report.TotalEmissionsKg-0.6) > 1e-9 {
		t.Errorf("TotalEmissionsKg = %v, want 0.6", report.TotalEmissionsKg)
	}
	// 0.6 kg at 0.6 kg/kWh is one kilowatt-hour.
	if math.Abs(report.EnergyConsumptionKWh-1.0) > 1e-9 {
		t.Errorf("EnergyConsumptionKWh = %v, want 1.0", report.EnergyConsumptionKWh)
	}
	if math.Abs(report.TreesEquivalent-9.9) > 1e-9 {
		t.Errorf("TreesEquivalent = %v, want 9.9", report.TreesEquivalent)
	}
	if len(report.Measurements) != 1 {
		t.Errorf("Measurements = %d, want 1", len(report.Measurements))
	}
	if len(report.MitigationStrategies) != 3 {
		t.Errorf("MitigationStrategies = %d, want 3", len(report.MitigationStrategies))
	}
}

func TestRandomSampler(t *testing.T) {
	t.Run("bounded", func(t *testing.T) {
		s := NewRandomSampler(1)
		for i := 0; i < 100; i++ {
			v := s.Sample(time.Second)
			if v < 0.001 || v > 0.1 {
				t.Fatalf("sample %v outside [0.001, 0.1]", v)
			}
		}
	})

	t.Run("deterministic per seed", func(t *testing.T) {
		a, b := NewRandomSampler(7), NewRandomSampler(7)
		for i := 0; i < 10; i++ {
			if a.Sample(0) != b.Sample(0) {
				t.Fatal("same seed diverged")
			}
		}
	})
}
