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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
	"github.com/AleutianAI/ImpactGuard/services/guardian/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestStore opens a fresh in-memory store scoped to the test.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// doJSON performs a request with an optional JSON body and returns the
// recorded response.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response into out.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// waitForAssessmentStatus polls the store until the assessment reaches a
// terminal status or the deadline passes.
func waitForAssessmentStatus(t *testing.T, store *storage.Store, id string, timeout time.Duration) datatypes.Assessment {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		a, err := store.GetAssessment(id)
		if err == nil && a.Status != datatypes.AssessmentRunning {
			return a
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("assessment %s did not finish within %v", id, timeout)
	return datatypes.Assessment{}
}

func TestHealthCheck(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	decodeBody(t, w, &body)
	if body["status"] != "ok" || body["service"] != "guardian" {
		t.Errorf("unexpected health body: %v", body)
	}
}
