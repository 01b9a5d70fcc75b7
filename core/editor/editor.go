// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package editor binds a text field to its formatted content.
package editor

import (
	"sync"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/core/document"
)

// Selection is re-exported for callers that only deal with editors.
type Selection = document.Selection

// Editor holds the formatted-content string of one pane.
//
// Content is passed through untouched: GetContent returns exactly what was
// last set. Only formatting commands parse and re-serialize it.
type Editor struct {
	mu       sync.RWMutex
	content  string
	editable bool
}

// New creates an editor whose editability is fixed for its lifetime.
func New(editable bool) *Editor {
	return &Editor{editable: editable}
}

// NewSource creates an editable editor for original-language text.
func NewSource() *Editor {
	return New(true)
}

// NewTarget creates a read-only editor for translated text.
func NewTarget() *Editor {
	return New(false)
}

// Editable reports whether formatting commands apply to this editor.
func (e *Editor) Editable() bool {
	return e.editable
}

func (e *Editor) GetContent() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.content
}

// SetContent replaces the content. It works on read-only editors too; they
// are written programmatically.
func (e *Editor) SetContent(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.content = s
}

// IsEmpty reports whether the editor holds no visible text.
func (e *Editor) IsEmpty() bool {
	return document.IsEmpty(e.GetContent())
}

// ToggleBold toggles bold over sel. It reports whether the content changed
// and is a no-op on read-only editors.
func (e *Editor) ToggleBold(sel Selection) bool {
	return e.toggle(document.Bold, sel)
}

// ToggleItalic toggles italic over sel. It reports whether the content changed
// and is a no-op on read-only editors.
func (e *Editor) ToggleItalic(sel Selection) bool {
	return e.toggle(document.Italic, sel)
}

func (e *Editor) toggle(mark document.Mark, sel Selection) bool {
	if !e.editable {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := document.Parse(e.content)
	if err != nil {
		log.Debug().Err(err).Str("mark", mark.String()).Msg("Ignoring formatting command on unparsable content")

		return false
	}

	if !doc.ToggleMark(mark, sel) {
		return false
	}

	e.content = doc.HTML()

	return true
}
