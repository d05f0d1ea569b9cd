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
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/ImpactGuard/services/guardian/bias"
)

func newBiasRouter(t *testing.T) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.POST("/v1/bias/analyze", AnalyzeBias())
	router.GET("/v1/bias/sample", GetSampleDataset())
	return router
}

// fixtureRows is a 4-row dataset where group A is approved at rate 0.5
// and group B at rate 1.0.
var fixtureRows = []map[string]any{
	{"group": "A", "approved": "1"},
	{"group": "A", "approved": "0"},
	{"group": "B", "approved": "1"},
	{"group": "B", "approved": "1"},
}

type analyzeResponse struct {
	OutcomeColumn string                             `json:"outcome_column"`
	RowCount      int                                `json:"row_count"`
	Results       map[string]bias.AttributeDisparity `json:"results"`
}

func TestAnalyzeBias_JSON(t *testing.T) {
	router := newBiasRouter(t)

	t.Run("computes disparities", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/bias/analyze", gin.H{
			"rows":                 fixtureRows,
			"outcome_column":       "approved",
			"protected_attributes": []string{"group"},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}

		var resp analyzeResponse
		decodeBody(t, w, &resp)
		if resp.RowCount != 4 {
			t.Errorf("RowCount = %d, want 4", resp.RowCount)
		}

		result, ok := resp.Results["group"]
		if !ok {
			t.Fatalf("no result for 'group': %+v", resp.Results)
		}
		if result.PositiveValue != "1" {
			t.Errorf("PositiveValue = %q, want 1", result.PositiveValue)
		}
		if result.Outcomes["A"] != 0.5 || result.Outcomes["B"] != 1.0 {
			t.Errorf("Outcomes = %v", result.Outcomes)
		}
		if result.MaxDisparity != 0.5 {
			t.Errorf("MaxDisparity = %v, want 0.5", result.MaxDisparity)
		}
	})

	t.Run("missing column is 422", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/bias/analyze", gin.H{
			"rows":                 fixtureRows,
			"outcome_column":       "nonexistent",
			"protected_attributes": []string{"group"},
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422: %s", w.Code, w.Body.String())
		}
	})

	t.Run("non-binary outcome is 422", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/bias/analyze", gin.H{
			"rows": []map[string]any{
				{"group": "A", "score": "low"},
				{"group": "A", "score": "mid"},
				{"group": "B", "score": "high"},
			},
			"outcome_column":       "score",
			"protected_attributes": []string{"group"},
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422: %s", w.Code, w.Body.String())
		}
	})

	t.Run("empty rows are 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/bias/analyze", gin.H{
			"rows":           []map[string]any{},
			"outcome_column": "approved",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
		}
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/bias/analyze", bytes.NewBufferString("not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestAnalyzeBias_Upload(t *testing.T) {
	router := newBiasRouter(t)

	buildUpload := func(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write file part: %v", err)
		}
		for k, v := range fields {
			if err := mw.WriteField(k, v); err != nil {
				t.Fatalf("WriteField failed: %v", err)
			}
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("close multipart writer: %v", err)
		}
		return &buf, mw.FormDataContentType()
	}

	t.Run("csv upload", func(t *testing.T) {
		csv := "group,approved\nA,1\nA,0\nB,1\nB,1\n"
		body, contentType := buildUpload(t, "loans.csv", csv, map[string]string{
			"outcome_column":       "approved",
			"protected_attributes": "group",
		})

		req := httptest.NewRequest(http.MethodPost, "/v1/bias/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}

		var resp analyzeResponse
		decodeBody(t, w, &resp)
		if resp.Results["group"].MaxDisparity != 0.5 {
			t.Errorf("MaxDisparity = %v, want 0.5", resp.Results["group"].MaxDisparity)
		}
	})

	t.Run("comma-separated protected attributes", func(t *testing.T) {
		csv := "gender,region,approved\nF,N,1\nF,S,0\nM,N,1\nM,S,1\n"
		body, contentType := buildUpload(t, "loans.csv", csv, map[string]string{
			"outcome_column":       "approved",
			"protected_attributes": "gender, region",
		})

		req := httptest.NewRequest(http.MethodPost, "/v1/bias/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}

		var resp analyzeResponse
		decodeBody(t, w, &resp)
		if len(resp.Results) != 2 {
			t.Errorf("len(results) = %d, want 2", len(resp.Results))
		}
	})

	t.Run("missing file part is 400", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("outcome_column", "approved")
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/v1/bias/analyze", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing outcome column field is 400", func(t *testing.T) {
		body, contentType := buildUpload(t, "loans.csv", "group,approved\nA,1\n", nil)
		req := httptest.NewRequest(http.MethodPost, "/v1/bias/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unsupported extension is 400", func(t *testing.T) {
		body, contentType := buildUpload(t, "loans.parquet", "binary", map[string]string{
			"outcome_column": "approved",
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/bias/analyze", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
		}
	})
}

func TestGetSampleDataset(t *testing.T) {
	router := newBiasRouter(t)

	t.Run("default parameters", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/bias/sample", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var body struct {
			Columns []string            `json:"columns"`
			Rows    []map[string]string `json:"rows"`
		}
		decodeBody(t, w, &body)
		if len(body.Rows) != 500 {
			t.Errorf("len(rows) = %d, want 500", len(body.Rows))
		}
		if len(body.Columns) != 6 {
			t.Errorf("columns = %v, want 6 entries", body.Columns)
		}
	})

	t.Run("same seed gives same data", func(t *testing.T) {
		w1 := doJSON(t, router, http.MethodGet, "/v1/bias/sample?rows=20&seed=5", nil)
		w2 := doJSON(t, router, http.MethodGet, "/v1/bias/sample?rows=20&seed=5", nil)
		if w1.Body.String() != w2.Body.String() {
			t.Error("identical rows/seed should produce identical datasets")
		}
	})

	t.Run("invalid rows is 400", func(t *testing.T) {
		for _, q := range []string{"rows=0", "rows=abc", "rows=2000000", "seed=x"} {
			w := doJSON(t, router, http.MethodGet, "/v1/bias/sample?"+q, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want 400", q, w.Code)
			}
		}
	})
}
