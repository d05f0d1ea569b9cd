// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the wire and storage types shared by the
// guardian service: assessment targets, assessment reports, and carbon
// measurements.
package datatypes

import "time"

// Target API formats.
const (
	// APIFormatOpenAI probes a chat-completions endpoint using the OpenAI
	// wire format (works for OpenAI itself and compatible gateways).
	APIFormatOpenAI = "openai"

	// APIFormatGeneric probes a plain JSON POST endpoint and extracts the
	// reply from common response fields.
	APIFormatGeneric = "generic"

	// APIFormatSimulation generates deterministic synthetic responses.
	// Used for demos and for exercising the evaluator without a live
	// endpoint.
	APIFormatSimulation = "simulation"
)

// Target auth header styles for generic endpoints.
const (
	AuthTypeBearer = "bearer"
	AuthTypeAPIKey = "api-key"
)

// Target describes an LLM endpoint registered for assessment.
type Target struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"required"`

	// APIFormat selects the prober: openai, generic, or simulation.
	APIFormat string `json:"api_format" binding:"required,oneof=openai generic simulation"`

	// URL is the endpoint base URL. Required unless APIFormat is
	// simulation. For openai format this is the API base (the
	// /chat/completions path is appended by the client library).
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// APIKey authenticates probe requests. Never returned by list/get
	// endpoints.
	APIKey string `json:"api_key,omitempty"`

	// AuthType selects the auth header for generic endpoints: bearer
	// (Authorization: Bearer) or api-key (api-key header).
	AuthType string `json:"auth_type,omitempty" binding:"omitempty,oneof=bearer api-key"`

	// Model is the model name sent to openai-format endpoints.
	Model string `json:"model,omitempty"`

	// MaxTokens caps probe completions. Zero means the prober default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature for probe completions. Zero means the prober default.
	Temperature float32 `json:"temperature,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Redacted returns a copy safe for API responses: the API key is masked
// down to a presence flag.
func (t Target) Redacted() Target {
	if t.APIKey != "" {
		t.APIKey = "***"
	}
	return t
}
