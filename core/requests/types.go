// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"net/http"

	"codeberg.org/plae/plae/core/audit"
)

// RequestOptions are parameters for Do.
type RequestOptions struct {
	Method      string
	URL         string
	Header      http.Header
	Body        []byte
	ContentType string

	// Destination labels the request in logs and Server-Timing metrics.
	Destination audit.TrafficDestination
}
