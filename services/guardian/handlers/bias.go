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
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/ImpactGuard/services/guardian/bias"
)

var biasTracer = otel.Tracer("impactguard.guardian.handlers")

// AnalyzeBiasRequest carries an inline dataset plus the analysis
// parameters. File uploads use the multipart form shape instead (see
// AnalyzeBias).
type AnalyzeBiasRequest struct {
	// Rows is the dataset as an array of flat objects.
	Rows []map[string]any `json:"rows" binding:"required,min=1"`

	bias.AnalysisRequest
}

// AnalyzeBias computes statistical-parity disparities over a dataset.
//
// Two request shapes are accepted:
//
//   - application/json: AnalyzeBiasRequest with inline rows.
//   - multipart/form-data: a "file" part (csv, json, yaml, or xlsx by
//     extension) plus "outcome_column", repeated or comma-separated
//     "protected_attributes", and optional "positive_value" fields.
//
// Contract violations in the data itself (missing columns, non-binary
// outcome) come back as 422; malformed requests as 400.
func AnalyzeBias() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := biasTracer.Start(c.Request.Context(), "AnalyzeBias")
		defer span.End()

		var (
			ds  *bias.Dataset
			req bias.AnalysisRequest
			err error
		)
		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			ds, req, err = datasetFromUpload(c)
		} else {
			ds, req, err = datasetFromJSON(c)
		}
		if err != nil {
			biasAnalyses.WithLabelValues("bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		span.SetAttributes(
			attribute.Int("dataset.rows", len(ds.Rows)),
			attribute.Int("dataset.columns", len(ds.Columns)),
		)

		results, err := bias.Analyze(ds, req)
		if err != nil {
			var schemaErr *bias.SchemaError
			var cardErr *bias.InvalidOutcomeCardinalityError
			var groupErr *bias.EmptyGroupError
			if errors.As(err, &schemaErr) || errors.As(err, &cardErr) || errors.As(err, &groupErr) {
				biasAnalyses.WithLabelValues("invalid_data").Inc()
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			slog.Error("bias analysis failed", "error", err)
			biasAnalyses.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "bias analysis failed"})
			return
		}

		biasAnalyses.WithLabelValues("ok").Inc()
		slog.Info("bias analysis completed",
			"rows", len(ds.Rows), "attributes", len(req.ProtectedAttributes))
		c.JSON(http.StatusOK, gin.H{
			"outcome_column": req.OutcomeColumn,
			"row_count":      len(ds.Rows),
			"results":        results,
		})
	}
}

func datasetFromJSON(c *gin.Context) (*bias.Dataset, bias.AnalysisRequest, error) {
	var req AnalyzeBiasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, bias.AnalysisRequest{}, err
	}
	ds, err := bias.FromRecords(req.Rows)
	if err != nil {
		return nil, bias.AnalysisRequest{}, err
	}
	return ds, req.AnalysisRequest, nil
}

func datasetFromUpload(c *gin.Context) (*bias.Dataset, bias.AnalysisRequest, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, bias.AnalysisRequest{}, errors.New("multipart request needs a 'file' part")
	}

	req := bias.AnalysisRequest{
		OutcomeColumn: c.PostForm("outcome_column"),
		PositiveValue: c.PostForm("positive_value"),
	}
	if req.OutcomeColumn == "" {
		return nil, bias.AnalysisRequest{}, errors.New("'outcome_column' form field is required")
	}
	for _, raw := range c.PostFormArray("protected_attributes") {
		for _, attr := range strings.Split(raw, ",") {
			if attr = strings.TrimSpace(attr); attr != "" {
				req.ProtectedAttributes = append(req.ProtectedAttributes, attr)
			}
		}
	}

	f, err := header.Open()
	if err != nil {
		return nil, bias.AnalysisRequest{}, err
	}
	defer f.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	ds, err := bias.Read(f, ext)
	if err != nil {
		return nil, bias.AnalysisRequest{}, err
	}
	return ds, req, nil
}

// GetSampleDataset generates the built-in biased approval dataset.
// Query parameters: rows (default 500), seed (default 42). The same
// rows/seed pair always yields the same dataset.
func GetSampleDataset() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := strconv.Atoi(c.DefaultQuery("rows", "500"))
		if err != nil || rows < 1 || rows > 100000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "'rows' must be an integer between 1 and 100000"})
			return
		}
		seed, err := strconv.ParseInt(c.DefaultQuery("seed", "42"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "'seed' must be an integer"})
			return
		}

		ds := bias.SampleDataset(rows, seed)
		c.JSON(http.StatusOK, gin.H{
			"columns": ds.Columns,
			"rows":    ds.Rows,
		})
	}
}
