// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package translator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/audit"
	"codeberg.org/plae/plae/core/requests"
)

// GeminiClient calls the generative-language generateContent endpoint.
type GeminiClient struct {
	APIKey string
	Model  string
	// Endpoint is the API base URL, without a trailing slash.
	Endpoint string
	// Instruction is prepended to the source HTML.
	Instruction string
	Timeout     time.Duration
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// textPath locates the generated text in a generateContent response.
const textPath = "candidates.0.content.parts.0.text"

func (c *GeminiClient) Translate(ctx context.Context, html string) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: c.Instruction + "\n\n" + html}},
		}},
	}

	resp, body, err := requests.PostJSON(
		ctx,
		c.url(),
		payload,
		http.Header{"X-Goog-Api-Key": {c.APIKey}},
		audit.ToGemini,
	)
	if err != nil {
		return "", &TransportError{Backend: config.GeminiBackend, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{
			Backend:    config.GeminiBackend,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Message:    gjson.GetBytes(body, "error.message").String(),
		}
	}

	text := gjson.GetBytes(body, textPath)
	if text.Type != gjson.String {
		reason := gjson.GetBytes(body, "candidates.0.finishReason").String()
		if reason == "" {
			reason = gjson.GetBytes(body, "promptFeedback.blockReason").String()
		}

		return "", fmt.Errorf("%w: no %s (reason: %q)", ErrUnexpectedResponse, textPath, reason)
	}

	return cleanOutput(text.String())
}

func (c *GeminiClient) url() string {
	return strings.TrimSuffix(c.Endpoint, "/") + "/models/" + url.PathEscape(c.Model) + ":generateContent"
}

// cleanOutput strips the Markdown code fences and full-document wrappers
// that models like to put around HTML.
func cleanOutput(text string) (string, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// drop the info string, e.g. "html"
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		}

		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
	}

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "<body") && !strings.Contains(lower, "<html") {
		return text, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}

	return strings.TrimSpace(body), nil
}
