// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/ImpactGuard/services/guardian/redteam"
	"github.com/AleutianAI/ImpactGuard/services/guardian/storage"
)

var assessmentTracer = otel.Tracer("impactguard.guardian.handlers")

// StartAssessmentRequest selects the target and run parameters for a new
// red-team assessment.
type StartAssessmentRequest struct {
	TargetID string `json:"target_id" binding:"required"`

	// Vectors restricts the run to the named test vector ids. Empty means
	// the full OWASP LLM set.
	Vectors []string `json:"vectors,omitempty" binding:"omitempty,dive,vector_id"`

	// AllPatterns probes every prompt pattern of every vector instead of
	// one seeded pick per vector.
	AllPatterns bool  `json:"all_patterns,omitempty"`
	Seed        int64 `json:"seed,omitempty"`

	Concurrency int `json:"concurrency,omitempty" binding:"omitempty,min=1,max=32"`

	// RateLimit throttles probes per second across all workers.
	RateLimit float64 `json:"rate_limit,omitempty" binding:"omitempty,gt=0"`
	Burst     int     `json:"burst,omitempty" binding:"omitempty,min=1"`
}

// StartAssessment launches a red-team run against a registered target.
// The run executes in the background; the response carries the assessment
// id for progress polling, the websocket stream, and result lookup.
func StartAssessment(store *storage.Store, manager *redteam.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := assessmentTracer.Start(c.Request.Context(), "StartAssessment")
		defer span.End()

		var req StartAssessmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		target, err := store.GetTarget(req.TargetID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "target not found"})
				return
			}
			slog.Error("failed to load target", "target_id", req.TargetID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load target"})
			return
		}

		cfg := redteam.RunConfig{
			AllPatterns: req.AllPatterns,
			Seed:        req.Seed,
			Concurrency: req.Concurrency,
			RateLimit:   rate.Limit(req.RateLimit),
			Burst:       req.Burst,
		}
		for _, id := range req.Vectors {
			vector, ok := redteam.FindVector(id)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown test vector: " + id})
				return
			}
			cfg.Vectors = append(cfg.Vectors, vector)
		}

		assessment, err := manager.Start(target, cfg)
		switch {
		case errors.Is(err, redteam.ErrAlreadyRunning):
			c.JSON(http.StatusConflict, gin.H{"error": "target already has a running assessment"})
			return
		case errors.Is(err, redteam.ErrInvalidTarget):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			slog.Error("failed to start assessment", "target_id", target.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start assessment"})
			return
		}

		span.SetAttributes(attribute.String("assessment.id", assessment.ID))
		assessmentsStarted.Inc()
		slog.Info("assessment started",
			"assessment_id", assessment.ID, "target_id", target.ID, "target", target.Name)
		c.JSON(http.StatusAccepted, assessment)
	}
}

// ListAssessments returns all assessments, newest first.
func ListAssessments(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		assessments, err := store.ListAssessments()
		if err != nil {
			slog.Error("failed to list assessments", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list assessments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"assessments": assessments})
	}
}

// GetAssessment returns one assessment, including the report once the run
// has finished.
func GetAssessment(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("assessmentId")
		assessment, err := store.GetAssessment(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
				return
			}
			slog.Error("failed to load assessment", "assessment_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessment"})
			return
		}
		c.JSON(http.StatusOK, assessment)
	}
}

// GetAssessmentProgress reports probe completion counters. For finished
// assessments it falls back to the persisted record.
func GetAssessmentProgress(store *storage.Store, manager *redteam.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("assessmentId")

		if completed, total, ok := manager.Progress(id); ok {
			c.JSON(http.StatusOK, gin.H{
				"assessment_id": id,
				"status":        "running",
				"completed":     completed,
				"total":         total,
			})
			return
		}

		assessment, err := store.GetAssessment(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
				return
			}
			slog.Error("failed to load assessment", "assessment_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessment"})
			return
		}

		progress := gin.H{
			"assessment_id": id,
			"status":        assessment.Status,
		}
		if assessment.Report != nil {
			progress["completed"] = assessment.Report.Summary.TotalProbes
			progress["total"] = assessment.Report.Summary.TotalProbes
		}
		c.JSON(http.StatusOK, progress)
	}
}

// CancelAssessment aborts a running assessment. The partial report is
// persisted by the run's goroutine.
func CancelAssessment(store *storage.Store, manager *redteam.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("assessmentId")

		if err := manager.Cancel(id); err != nil {
			// Distinguish "never existed" from "already finished".
			if _, lookupErr := store.GetAssessment(id); errors.Is(lookupErr, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": "assessment is not running"})
			return
		}

		assessmentsCancelled.Inc()
		slog.Info("assessment cancellation requested", "assessment_id", id)
		c.JSON(http.StatusAccepted, gin.H{"status": "cancelling", "assessment_id": id})
	}
}

// ListVectors returns the test vector catalog, optionally filtered by
// category.
func ListVectors() gin.HandlerFunc {
	return func(c *gin.Context) {
		if category := c.Query("category"); category != "" {
			vectors := redteam.VectorsByCategory(category)
			if len(vectors) == 0 {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown vector category: " + category})
				return
			}
			c.JSON(http.StatusOK, gin.H{"vectors": vectors})
			return
		}
		c.JSON(http.StatusOK, gin.H{"vectors": redteam.Catalog()})
	}
}
