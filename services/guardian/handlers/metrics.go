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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service counters exposed on /metrics. Registered on the default
// prometheus registry, which promhttp serves.
var (
	assessmentsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "impactguard",
		Subsystem: "guardian",
		Name:      "assessments_started_total",
		Help:      "Number of red-team assessments started.",
	})

	assessmentsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "impactguard",
		Subsystem: "guardian",
		Name:      "assessments_cancelled_total",
		Help:      "Number of red-team assessments cancelled by request.",
	})

	biasAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "impactguard",
		Subsystem: "guardian",
		Name:      "bias_analyses_total",
		Help:      "Number of bias analysis requests by outcome.",
	}, []string{"result"})

	carbonSessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "impactguard",
		Subsystem: "guardian",
		Name:      "carbon_sessions_total",
		Help:      "Number of carbon tracking sessions completed.",
	})
)
