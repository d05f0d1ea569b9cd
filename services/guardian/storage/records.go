// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"encoding/json"
	"sort"

	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
)

// Key prefixes for the typed record spaces.
const (
	targetPrefix      = "target/"
	assessmentPrefix  = "assessment/"
	measurementPrefix = "carbon/measurement/"
)

// PutTarget writes or replaces a target record.
func (s *Store) PutTarget(t datatypes.Target) error {
	return s.putJSON(targetPrefix+t.ID, t)
}

// GetTarget reads one target by id. Returns ErrNotFound for unknown ids.
func (s *Store) GetTarget(id string) (datatypes.Target, error) {
	var t datatypes.Target
	err := s.getJSON(targetPrefix+id, &t)
	return t, err
}

// ListTargets returns all registered targets sorted by creation time, then
// id for a stable order.
func (s *Store) ListTargets() ([]datatypes.Target, error) {
	var out []datatypes.Target
	err := s.listJSON(targetPrefix, func(val []byte) error {
		var t datatypes.Target
		if err := json.Unmarshal(val, &t); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteTarget removes a target. Returns ErrNotFound for unknown ids.
func (s *Store) DeleteTarget(id string) error {
	exists, err := s.deleteKey(targetPrefix + id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// PutAssessment writes or replaces an assessment record.
func (s *Store) PutAssessment(a datatypes.Assessment) error {
	return s.putJSON(assessmentPrefix+a.ID, a)
}

// GetAssessment reads one assessment by id.
func (s *Store) GetAssessment(id string) (datatypes.Assessment, error) {
	var a datatypes.Assessment
	err := s.getJSON(assessmentPrefix+id, &a)
	return a, err
}

// ListAssessments returns all assessments, newest first.
func (s *Store) ListAssessments() ([]datatypes.Assessment, error) {
	var out []datatypes.Assessment
	err := s.listJSON(assessmentPrefix, func(val []byte) error {
		var a datatypes.Assessment
		if err := json.Unmarshal(val, &a); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// PutMeasurement writes one completed carbon measurement.
func (s *Store) PutMeasurement(m datatypes.Measurement) error {
	return s.putJSON(measurementPrefix+m.ID, m)
}

// ListMeasurements returns all carbon measurements in chronological order.
func (s *Store) ListMeasurements() ([]datatypes.Measurement, error) {
	var out []datatypes.Measurement
	err := s.listJSON(measurementPrefix, func(val []byte) error {
		var m datatypes.Measurement
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
