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

	"github.com/AleutianAI/ImpactGuard/services/guardian/carbon"
	"github.com/AleutianAI/ImpactGuard/services/guardian/storage"
)

// StartCarbonSession begins emission tracking. Only one session can be
// open at a time; starting twice is a conflict.
func StartCarbonSession(tracker *carbon.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := tracker.StartSession()
		if err != nil {
			if errors.Is(err, carbon.ErrAlreadyTracking) {
				c.JSON(http.StatusConflict, gin.H{"error": "a tracking session is already active"})
				return
			}
			slog.Error("failed to start carbon session", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start carbon session"})
			return
		}

		slog.Info("carbon tracking session started", "session_id", sessionID)
		c.JSON(http.StatusCreated, gin.H{"session_id": sessionID, "tracking": true})
	}
}

// StopCarbonSession closes the open tracking session and persists its
// measurement.
func StopCarbonSession(tracker *carbon.Tracker, store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		measurement, err := tracker.StopSession()
		if err != nil {
			if errors.Is(err, carbon.ErrNotTracking) {
				c.JSON(http.StatusConflict, gin.H{"error": "no tracking session is active"})
				return
			}
			slog.Error("failed to stop carbon session", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stop carbon session"})
			return
		}

		if err := store.PutMeasurement(measurement); err != nil {
			slog.Error("failed to persist carbon measurement",
				"measurement_id", measurement.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist measurement"})
			return
		}

		carbonSessions.Inc()
		slog.Info("carbon tracking session stopped",
			"measurement_id", measurement.ID, "emissions_kg", measurement.EmissionsKg)
		c.JSON(http.StatusOK, measurement)
	}
}

// GetCarbonReport returns the impact report for this process: cumulative
// emissions, derived energy consumption, the trees-equivalent figure, and
// the mitigation catalog.
func GetCarbonReport(tracker *carbon.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, tracker.Report())
	}
}

// ListMeasurements returns all persisted measurements across restarts, in
// chronological order.
func ListMeasurements(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		measurements, err := store.ListMeasurements()
		if err != nil {
			slog.Error("failed to list measurements", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list measurements"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"measurements": measurements})
	}
}
