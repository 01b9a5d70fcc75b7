// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package translator talks to the backends that turn Thai formatted content
into English formatted content.

Two backends exist: the local translation service (POST /api/translate) and
the generative-language API called directly. Both take and return an HTML
string.
*/
package translator

import (
	"context"
	"time"

	"codeberg.org/plae/plae/config"
)

// Translator translates one formatted-content string.
type Translator interface {
	Translate(ctx context.Context, html string) (string, error)
}

// TranslatorFunc adapts an ordinary function to the Translator interface.
type TranslatorFunc func(ctx context.Context, html string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, html string) (string, error) {
	return f(ctx, html)
}

// New returns the backend selected by cfg.Frontend.Backend.
func New(cfg *config.ServerConfig) Translator {
	if cfg.Frontend.Backend == config.GeminiBackend {
		return NewGemini(cfg)
	}

	return &ServiceClient{
		URL:     cfg.Service.URL,
		Timeout: cfg.Service.Timeout,
	}
}

// NewGemini returns a client for the generative-language API configured by cfg.
func NewGemini(cfg *config.ServerConfig) *GeminiClient {
	return &GeminiClient{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Endpoint:    cfg.Gemini.Endpoint,
		Instruction: cfg.Gemini.Instruction,
		Timeout:     cfg.Service.Timeout,
	}
}

// withTimeout bounds ctx by d unless d is zero.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}
