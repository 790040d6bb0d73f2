// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package models

import "time"

// APIResponse is the standardized response wrapper used by every HTTP
// endpoint. Status is "success" or "error"; Error is populated only for
// error responses.
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "PROFILE_NOT_FOUND", "message": "profile does not exist or is private"},
//	  "metadata": {"timestamp": "2026-08-29T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response observability fields.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError describes a failed request with a machine-readable code and a
// human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
