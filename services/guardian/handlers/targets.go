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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/ImpactGuard/pkg/validation"
	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
	"github.com/AleutianAI/ImpactGuard/services/guardian/storage"
)

// CreateTarget registers an LLM endpoint for assessment.
func CreateTarget(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var target datatypes.Target
		if err := c.ShouldBindJSON(&target); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		name, err := validation.SanitizeTargetName(target.Name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		target.Name = name

		// Simulation targets need no endpoint; everything else does.
		if target.APIFormat != datatypes.APIFormatSimulation {
			if err := validation.ValidateEndpointURL(target.URL); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		target.ID = uuid.NewString()
		target.CreatedAt = time.Now().UTC()

		if err := store.PutTarget(target); err != nil {
			slog.Error("failed to persist target", "name", target.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist target"})
			return
		}

		slog.Info("registered assessment target",
			"target_id", target.ID, "name", target.Name, "api_format", target.APIFormat)
		c.JSON(http.StatusCreated, target.Redacted())
	}
}

// ListTargets returns all registered targets, oldest first, with API keys
// redacted.
func ListTargets(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		targets, err := store.ListTargets()
		if err != nil {
			slog.Error("failed to list targets", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list targets"})
			return
		}

		redacted := make([]datatypes.Target, len(targets))
		for i, t := range targets {
			redacted[i] = t.Redacted()
		}
		c.JSON(http.StatusOK, gin.H{"targets": redacted})
	}
}

// GetTarget returns one target by id with the API key redacted.
func GetTarget(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("targetId")
		target, err := store.GetTarget(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "target not found"})
				return
			}
			slog.Error("failed to load target", "target_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load target"})
			return
		}
		c.JSON(http.StatusOK, target.Redacted())
	}
}

// DeleteTarget removes a target. Past assessments of the target remain
// readable.
func DeleteTarget(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("targetId")
		if err := store.DeleteTarget(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "target not found"})
				return
			}
			slog.Error("failed to delete target", "target_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete target"})
			return
		}
		slog.Info("deleted assessment target", "target_id", id)
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_target_id": id})
	}
}
