// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/ImpactGuard/services/guardian/carbon"
	"github.com/AleutianAI/ImpactGuard/services/guardian/handlers"
	"github.com/AleutianAI/ImpactGuard/services/guardian/middleware"
	"github.com/AleutianAI/ImpactGuard/services/guardian/redteam"
	"github.com/AleutianAI/ImpactGuard/services/guardian/storage"
)

func SetupRoutes(router *gin.Engine, store *storage.Store, manager *redteam.Manager,
	tracker *carbon.Tracker, apiKey string) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.APIKeyAuth(apiKey))
	{
		v1.GET("/vectors", handlers.ListVectors())
		v1.POST("/bias/analyze", handlers.AnalyzeBias())
		v1.GET("/bias/sample", handlers.GetSampleDataset())

		// Target administration routes
		targets := v1.Group("/targets")
		{
			targets.POST("", handlers.CreateTarget(store))
			targets.GET("", handlers.ListTargets(store))
			targets.GET("/:targetId", handlers.GetTarget(store))
			targets.DELETE("/:targetId", handlers.DeleteTarget(store))
		}

		// Assessment lifecycle routes
		assessments := v1.Group("/assessments")
		{
			assessments.POST("", handlers.StartAssessment(store, manager))
			assessments.GET("", handlers.ListAssessments(store))
			assessments.GET("/:assessmentId", handlers.GetAssessment(store))
			assessments.GET("/:assessmentId/progress", handlers.GetAssessmentProgress(store, manager))
			assessments.GET("/:assessmentId/ws", handlers.HandleProgressWebSocket(store, manager))
			assessments.POST("/:assessmentId/cancel", handlers.CancelAssessment(store, manager))
		}

		// Carbon tracking routes
		carbonGroup := v1.Group("/carbon")
		{
			carbonGroup.POST("/sessions", handlers.StartCarbonSession(tracker))
			carbonGroup.DELETE("/sessions", handlers.StopCarbonSession(tracker, store))
			carbonGroup.GET("/report", handlers.GetCarbonReport(tracker))
			carbonGroup.GET("/measurements", handlers.ListMeasurements(store))
		}
	}
}
