// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package api provides the HTTP surface: read endpoints for the cached
// bundles, write endpoints for interactions and ratings, health and
// metrics.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reeltrack/reeltrack/internal/logging"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Status string    `json:"status"`
	Data   any       `json:"data"`
	Error  *APIError `json:"error,omitempty"`
}

// APIError carries a machine-readable code plus a human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("encoding response failed")
	}
}

func respondData(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, Response{Status: "ok", Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, Response{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
	})
}
