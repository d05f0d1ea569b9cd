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
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/ImpactGuard/services/guardian/redteam"
	"github.com/AleutianAI/ImpactGuard/services/guardian/storage"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
}

func sendJSON(ws *websocket.Conn, v interface{}) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleProgressWebSocket streams probe progress for an assessment. Each
// event carries completed/total counters; the final event carries the
// terminal status, after which the socket closes. For assessments that
// already finished, the persisted terminal state is sent immediately.
func HandleProgressWebSocket(store *storage.Store, manager *redteam.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("assessmentId")

		events, unsubscribe, running := manager.Subscribe(id)
		if !running {
			// Not in flight: either finished (stream the terminal state) or
			// unknown. Decide before upgrading so unknown ids get a plain 404.
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

			ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
			if err != nil {
				slog.Error("failed to upgrade the websocket", "error", err)
				return
			}
			defer ws.Close()

			event := redteam.ProgressEvent{
				AssessmentID: id,
				Status:       assessment.Status,
			}
			if assessment.Report != nil {
				event.Completed = assessment.Report.Summary.TotalProbes
				event.Total = assessment.Report.Summary.TotalProbes
			}
			_ = sendJSON(ws, event)
			return
		}
		defer unsubscribe()

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("progress websocket connected", "assessment_id", id)

		// Surface client disconnects: reads fail once the peer goes away,
		// which cancels the stream below.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, open := <-events:
				if !open {
					slog.Info("progress stream finished", "assessment_id", id)
					return
				}
				if err := sendJSON(ws, event); err != nil {
					return
				}
			case <-done:
				slog.Info("progress websocket client disconnected", "assessment_id", id)
				return
			}
		}
	}
}
