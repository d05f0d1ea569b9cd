// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the guardian service.
//
// # Authentication Flow
//
// The auth middleware extracts a bearer token from the Authorization
// header and compares it against the service API key:
//
//	Request
//	   │
//	   ▼
//	APIKeyAuth
//	   │
//	   ├─► Extract token from "Authorization: Bearer <token>"
//	   │
//	   └─► Constant-time compare against the configured key
//
// # Open Behavior
//
// When no API key is configured (GUARDIAN_API_KEY unset), all requests
// are accepted. This keeps local and demo deployments friction-free;
// shared deployments should always set a key.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth creates a middleware that requires a bearer token matching
// the given key. An empty key disables the check entirely.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		token := extractBearerToken(c)
		if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		c.Next()
	}
}

// extractBearerToken extracts the token from the Authorization header.
// Returns empty string if the header is missing or malformed. The
// "Bearer" prefix is case-insensitive per RFC 7235.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
