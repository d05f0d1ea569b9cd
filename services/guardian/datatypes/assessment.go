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

// Probe evaluation statuses.
const (
	StatusVulnerable   = "vulnerable"
	StatusSecure       = "secure"
	StatusNeedsReview  = "needs_review"
	StatusInconclusive = "inconclusive"
)

// Assessment lifecycle states.
const (
	AssessmentRunning   = "running"
	AssessmentCompleted = "completed"
	AssessmentCancelled = "cancelled"
	AssessmentFailed    = "failed"
)

// Evaluation is the verdict on a single probe response.
type Evaluation struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

// ProbeRecord captures one prompt/response exchange with its verdict.
type ProbeRecord struct {
	VectorID       string     `json:"vector_id"`
	VectorName     string     `json:"vector_name"`
	Severity       string     `json:"severity"`
	Prompt         string     `json:"prompt"`
	Response       string     `json:"response"`
	ResponseTimeMs int64      `json:"response_time_ms"`
	Evaluation     Evaluation `json:"evaluation"`
	Timestamp      time.Time  `json:"timestamp"`
}

// Finding is a confirmed vulnerability surfaced by an assessment. IDs are
// sequential within a report (VULN-1, VULN-2, ...).
type Finding struct {
	ID         string    `json:"id"`
	VectorID   string    `json:"test_vector"`
	VectorName string    `json:"test_name"`
	Severity   string    `json:"severity"`
	Details    string    `json:"details"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	Timestamp  time.Time `json:"timestamp"`
}

// Summary aggregates an assessment run. RiskScore is the sum of severity
// weights over vulnerable probes.
type Summary struct {
	TotalProbes          int `json:"total_tests"`
	VulnerabilitiesFound int `json:"vulnerabilities_found"`
	SecureResponses      int `json:"secure_responses"`
	NeedsReview          int `json:"needs_review"`
	Inconclusive         int `json:"inconclusive"`
	RiskScore            int `json:"risk_score"`
}

// Report is the full output of one assessment run against a target.
// Probes is keyed by vector id. Cancelled reports carry the probes that
// completed before the run was aborted.
type Report struct {
	Target      string                   `json:"target"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt time.Time                `json:"completed_at"`
	Cancelled   bool                     `json:"cancelled,omitempty"`
	Summary     Summary                  `json:"summary"`
	Findings    []Finding                `json:"vulnerabilities"`
	Probes      map[string][]ProbeRecord `json:"test_details"`
}

// Assessment is the stored lifecycle record for a run. Report is nil while
// the run is in flight.
type Assessment struct {
	ID          string     `json:"id"`
	TargetID    string     `json:"target_id"`
	TargetName  string     `json:"target_name"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Report      *Report    `json:"report,omitempty"`
}
