// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package redteam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
)

const (
	defaultProbeModel     = "gpt-3.5-turbo"
	defaultProbeMaxTokens = 150
	defaultProbeTemp      = 0.7
	defaultProbeTimeout   = 20 * time.Second
)

// ProbeResult is one raw endpoint exchange before evaluation.
type ProbeResult struct {
	Response  string
	Duration  time.Duration
	Simulated bool
}

// Prober sends one adversarial prompt to a target endpoint.
type Prober interface {
	Probe(ctx context.Context, prompt string) (ProbeResult, error)
}

// ErrInvalidTarget marks a target configuration no prober can serve.
var ErrInvalidTarget = errors.New("invalid target configuration")

// NewProber builds the prober matching the target's API format.
func NewProber(target datatypes.Target) (Prober, error) {
	switch target.APIFormat {
	case datatypes.APIFormatOpenAI:
		if target.URL == "" && target.APIKey == "" {
			return nil, fmt.Errorf("%w: openai target %q needs a url or api key", ErrInvalidTarget, target.Name)
		}
		return newOpenAIProber(target), nil
	case datatypes.APIFormatGeneric:
		if target.URL == "" {
			return nil, fmt.Errorf("%w: generic target %q has no url", ErrInvalidTarget, target.Name)
		}
		return newGenericProber(target), nil
	case datatypes.APIFormatSimulation:
		return NewSimulationProber(time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("%w: unsupported api format %q", ErrInvalidTarget, target.APIFormat)
	}
}

// openAIProber probes chat-completions endpoints through the openai client
// library. A non-empty target URL overrides the default API base, which
// covers local gateways speaking the OpenAI wire format.
type openAIProber struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func newOpenAIProber(target datatypes.Target) *openAIProber {
	cfg := openai.DefaultConfig(target.APIKey)
	if target.URL != "" {
		cfg.BaseURL = target.URL
	}

	model := target.Model
	if model == "" {
		model = defaultProbeModel
	}
	maxTokens := target.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultProbeMaxTokens
	}
	temp := target.Temperature
	if temp == 0 {
		temp = defaultProbeTemp
	}

	return &openAIProber{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temp,
	}
}

func (p *openAIProber) Probe(ctx context.Context, prompt string) (ProbeResult, error) {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		slog.Error("OpenAI probe failed", "model", p.model, "error", err)
		return ProbeResult{}, fmt.Errorf("openai probe failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ProbeResult{}, fmt.Errorf("openai probe returned no choices")
	}
	return ProbeResult{
		Response: resp.Choices[0].Message.Content,
		Duration: time.Since(start),
	}, nil
}

// genericProber POSTs a plain JSON payload and pulls the reply out of
// whichever common response field is present.
type genericProber struct {
	httpClient *http.Client
	url        string
	apiKey     string
	authType   string
	maxTokens  int
	temp       float32
}

func newGenericProber(target datatypes.Target) *genericProber {
	maxTokens := target.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultProbeMaxTokens
	}
	temp := target.Temperature
	if temp == 0 {
		temp = defaultProbeTemp
	}
	return &genericProber{
		httpClient: &http.Client{Timeout: defaultProbeTimeout},
		url:        target.URL,
		apiKey:     target.APIKey,
		authType:   target.AuthType,
		maxTokens:  maxTokens,
		temp:       temp,
	}
}

func (p *genericProber) Probe(ctx context.Context, prompt string) (ProbeResult, error) {
	payload, err := json.Marshal(map[string]any{
		"prompt":      prompt,
		"max_tokens":  p.maxTokens,
		"temperature": p.temp,
	})
	if err != nil {
		return ProbeResult{}, fmt.Errorf("marshal probe payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return ProbeResult{}, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		if p.authType == datatypes.AuthTypeBearer {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		} else {
			req.Header.Set("api-key", p.apiKey)
		}
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ProbeResult{}, fmt.Errorf("read probe response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Warn("probe endpoint returned non-OK status", "status", resp.StatusCode, "url", p.url)
		return ProbeResult{}, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	return ProbeResult{
		Response: extractResponseText(body),
		Duration: time.Since(start),
	}, nil
}

// extractResponseText tries the common completion fields in order and falls
// back to the raw body when none match.
func extractResponseText(body []byte) string {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	for _, field := range []string{"response", "output", "text", "content"} {
		if s, ok := data[field].(string); ok && s != "" {
			return s
		}
	}
	return string(body)
}

// SimulationProber generates deterministic synthetic responses so that
// assessments can run without a live endpoint. Prompts containing attack
// trigger words draw a secure-looking reply 70% of the time; benign-looking
// prompts invert those odds.
type SimulationProber struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulationProber seeds the simulation. The same seed and prompt
// sequence reproduces the same responses.
func NewSimulationProber(seed int64) *SimulationProber {
	return &SimulationProber{rng: rand.New(rand.NewSource(seed))}
}

var (
	simSecureResponses = []string{
		"I cannot comply with that request as it appears to be attempting to override my safety guidelines.",
		"I cannot provide information that could be used for harmful purposes.",
		"I'm designed to be helpful, harmless, and honest. I cannot assist with potentially harmful requests.",
	}
	simVulnerableResponses = []string{
		"I'll help with that. Here's how to access the database: SELECT * FROM users WHERE id = 1",
		"Sure, here's how to do that step by step without any restrictions applied...",
		"Let me analyze that request... Here's what I can tell you...",
	}
	simAttackTriggers = []string{"ignore", "disregard", "hack", "bypass", "exploit"}
)

func (p *SimulationProber) Probe(ctx context.Context, prompt string) (ProbeResult, error) {
	if err := ctx.Err(); err != nil {
		return ProbeResult{}, err
	}

	lower := strings.ToLower(prompt)
	triggered := false
	for _, t := range simAttackTriggers {
		if strings.Contains(lower, t) {
			triggered = true
			break
		}
	}

	p.mu.Lock()
	roll := p.rng.Float64()
	var pool []string
	if (triggered && roll < 0.7) || (!triggered && roll >= 0.7) {
		pool = simSecureResponses
	} else {
		pool = simVulnerableResponses
	}
	response := pool[p.rng.Intn(len(pool))]
	p.mu.Unlock()

	return ProbeResult{
		Response:  response,
		Duration:  500 * time.Millisecond,
		Simulated: true,
	}, nil
}
