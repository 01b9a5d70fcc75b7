// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package translator

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/audit"
	"codeberg.org/plae/plae/core/requests"
)

// ServiceRequest is the body accepted by the local translation service.
type ServiceRequest struct {
	OriginalHTML string `json:"originalHtml"`
}

// ServiceResponse is the body returned by the local translation service.
type ServiceResponse struct {
	TranslatedHTML string `json:"translatedHtml"`
}

// ServiceClient calls the local translation service.
type ServiceClient struct {
	// URL of the translate endpoint, e.g. http://localhost:8080/api/translate.
	URL string
	// Timeout bounds each call. Zero means no limit.
	Timeout time.Duration
}

func (c *ServiceClient) Translate(ctx context.Context, html string) (string, error) {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	resp, body, err := requests.PostJSON(ctx, c.URL, ServiceRequest{OriginalHTML: html}, nil, audit.ToService)
	if err != nil {
		return "", &TransportError{Backend: config.ServiceBackend, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{
			Backend:    config.ServiceBackend,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: body is not JSON", ErrUnexpectedResponse)
	}

	translated := gjson.GetBytes(body, "translatedHtml")
	if translated.Type != gjson.String {
		return "", fmt.Errorf("%w: missing translatedHtml", ErrUnexpectedResponse)
	}

	return translated.String(), nil
}
