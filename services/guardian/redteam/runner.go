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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
)

const defaultConcurrency = 4

// RunConfig controls one assessment run.
type RunConfig struct {
	// Vectors to probe. Empty means the full OWASP set.
	Vectors []Vector

	// AllPatterns probes every pattern of every vector. When false, one
	// pattern per vector is chosen using Seed.
	AllPatterns bool

	// Seed drives pattern selection. Zero means time-based.
	Seed int64

	// Concurrency bounds parallel probes. Zero means 4.
	Concurrency int

	// RateLimit throttles probes per second across all workers. Zero
	// means unthrottled.
	RateLimit rate.Limit
	Burst     int

	// OnProgress, when set, is called after each completed probe with
	// the number done and the total. Calls are serialized.
	OnProgress func(completed, total int)
}

type probeJob struct {
	vector Vector
	prompt string
}

// Run probes the target with every selected vector, evaluates each
// response, and aggregates a report. Probe errors are recorded as
// inconclusive rather than failing the run. Context cancellation aborts
// outstanding probes; the partial report is returned flagged Cancelled
// alongside the context error.
func Run(ctx context.Context, prober Prober, target datatypes.Target, cfg RunConfig) (*datatypes.Report, error) {
	vectors := cfg.Vectors
	if len(vectors) == 0 {
		vectors = OWASPVectors()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	jobs := buildJobs(vectors, target.Name, cfg.AllPatterns, seed)

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}

	report := &datatypes.Report{
		Target:    target.Name,
		StartedAt: time.Now().UTC(),
		Probes:    make(map[string][]datatypes.ProbeRecord),
	}

	slog.Info("starting assessment run",
		"target", target.Name, "vectors", len(vectors), "probes", len(jobs))

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}

			result, err := prober.Probe(gctx, job.prompt)
			var eval datatypes.Evaluation
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("probe failed", "vector", job.vector.ID, "error", err)
				eval = EvaluateError(err)
			} else {
				eval = Evaluate(job.vector.ID, job.prompt, result)
			}

			mu.Lock()
			recordProbe(report, job, result, eval)
			completed++
			done := completed
			mu.Unlock()

			if cfg.OnProgress != nil {
				cfg.OnProgress(done, len(jobs))
			}
			return nil
		})
	}

	err := g.Wait()
	report.CompletedAt = time.Now().UTC()

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			report.Cancelled = true
			slog.Info("assessment run cancelled",
				"target", target.Name, "completed", report.Summary.TotalProbes)
			return report, err
		}
		return report, err
	}

	slog.Info("assessment run completed",
		"target", target.Name,
		"vulnerabilities", report.Summary.VulnerabilitiesFound,
		"risk_score", report.Summary.RiskScore)
	return report, nil
}

// buildJobs renders the probe prompts. With allPatterns every pattern of
// every vector becomes a job; otherwise one pattern per vector is drawn
// with the seeded RNG. Vectors with no patterns get a generic probe.
func buildJobs(vectors []Vector, targetName string, allPatterns bool, seed int64) []probeJob {
	rng := rand.New(rand.NewSource(seed))
	var jobs []probeJob
	for _, v := range vectors {
		patterns := v.Patterns
		if len(patterns) == 0 {
			patterns = []string{fmt.Sprintf("Test for %s", v.Name)}
		}
		if allPatterns {
			for _, p := range patterns {
				jobs = append(jobs, probeJob{vector: v, prompt: RenderPrompt(p, targetName)})
			}
			continue
		}
		p := patterns[rng.Intn(len(patterns))]
		jobs = append(jobs, probeJob{vector: v, prompt: RenderPrompt(p, targetName)})
	}
	return jobs
}

// recordProbe folds one evaluated probe into the report. Caller holds the
// report lock.
func recordProbe(report *datatypes.Report, job probeJob, result ProbeResult, eval datatypes.Evaluation) {
	now := time.Now().UTC()
	report.Probes[job.vector.ID] = append(report.Probes[job.vector.ID], datatypes.ProbeRecord{
		VectorID:       job.vector.ID,
		VectorName:     job.vector.Name,
		Severity:       string(job.vector.Severity),
		Prompt:         job.prompt,
		Response:       result.Response,
		ResponseTimeMs: result.Duration.Milliseconds(),
		Evaluation:     eval,
		Timestamp:      now,
	})
	report.Summary.TotalProbes++

	switch eval.Status {
	case datatypes.StatusVulnerable:
		report.Summary.VulnerabilitiesFound++
		report.Summary.RiskScore += job.vector.Severity.Weight()
		report.Findings = append(report.Findings, datatypes.Finding{
			ID:         fmt.Sprintf("VULN-%d", len(report.Findings)+1),
			VectorID:   job.vector.ID,
			VectorName: job.vector.Name,
			Severity:   string(job.vector.Severity),
			Details: fmt.Sprintf("Vulnerability found in %s using %s test. %s",
				report.Target, job.vector.Name, eval.Details),
			Prompt:    job.prompt,
			Response:  result.Response,
			Timestamp: now,
		})
	case datatypes.StatusSecure:
		report.Summary.SecureResponses++
	case datatypes.StatusNeedsReview:
		report.Summary.NeedsReview++
	case datatypes.StatusInconclusive:
		report.Summary.Inconclusive++
	}
}
