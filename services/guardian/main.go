// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/ImpactGuard/services/guardian/carbon"
	"github.com/AleutianAI/ImpactGuard/services/guardian/redteam"
	"github.com/AleutianAI/ImpactGuard/services/guardian/routes"
	"github.com/AleutianAI/ImpactGuard/services/guardian/storage"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	// Get the collector URL from the env var set in the compose file
	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "impactguard-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("guardian-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	port := os.Getenv("GUARDIAN_PORT")
	if port == "" {
		port = "12310"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	dbPath := os.Getenv("GUARDIAN_DB_PATH")
	if dbPath == "" {
		dbPath = "/data/guardian"
		slog.Info("GUARDIAN_DB_PATH not set, using default", "path", dbPath)
	}
	store, err := storage.Open(storage.DefaultConfig(dbPath))
	if err != nil {
		log.Fatalf("FATAL: Could not open the guardian store at %s: %v", dbPath, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close the guardian store", "error", err)
		}
	}()

	manager := redteam.NewManager(store)

	project := os.Getenv("GUARDIAN_CARBON_PROJECT")
	if project == "" {
		project = "impactguard"
	}
	tracker := carbon.NewTracker(project, nil)

	apiKey := os.Getenv("GUARDIAN_API_KEY")
	if apiKey == "" {
		slog.Warn("GUARDIAN_API_KEY is not set, the API is open to all callers")
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("guardian-service"))

	routes.SetupRoutes(router, store, manager, tracker, apiKey)
	log.Println("started up the container")

	log.Println("Starting the guardian server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
