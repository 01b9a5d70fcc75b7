// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package requests sends outbound HTTP requests to translation backends.
package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/audit"
	"codeberg.org/plae/plae/core/idgen"
	"codeberg.org/plae/plae/server/request_context"
	"codeberg.org/plae/plae/server/utils"
)

// userAgent identifies Plae to translation backends.
var userAgent = "Plae/" + config.BuildVersion

// Do sends an HTTP request and returns the response together with its fully read body.
//
// The Body of the returned *http.Response is a NopCloser over the same bytes.
// Non-OK status codes are not treated as errors; that is left to the caller.
func Do(ctx context.Context, opts RequestOptions) (*http.Response, []byte, error) {
	req, err := newRequest(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	return sendRequest(ctx, req, opts.Destination)
}

// PostJSON marshals payload and POSTs it to url with a JSON content type.
func PostJSON(
	ctx context.Context,
	url string,
	payload any,
	header http.Header,
	destination audit.TrafficDestination,
) (*http.Response, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	return Do(ctx, RequestOptions{
		Method:      http.MethodPost,
		URL:         url,
		Header:      header,
		Body:        body,
		ContentType: "application/json",
		Destination: destination,
	})
}

func newRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range opts.Header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}

	return req, nil
}

// sendRequest executes req, reads the body for auditing, and returns the
// response with a new, readable body stream along with the raw body bytes.
func sendRequest(
	ctx context.Context,
	req *http.Request,
	destination audit.TrafficDestination,
) (_ *http.Response, _ []byte, err error) {
	span := audit.Span{
		Destination: destination,
		RequestID:   request_context.FromContext(ctx).RequestID + "-" + idgen.Make(),
		Method:      req.Method,
		URL:         redactURL(req),
	}

	defer func() {
		span.Error = err

		span.End()
		span.Log()
	}()

	_ = span.Begin(ctx)

	resp, err := utils.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.Size = len(body)

	resp.Body = io.NopCloser(bytes.NewReader(body))

	return resp, body, nil
}

// redactURL drops the query string, which may carry credentials.
func redactURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""

	return u.String()
}

// IsContextCanceled reports whether err comes from a canceled or expired context.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
