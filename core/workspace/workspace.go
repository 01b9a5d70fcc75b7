// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package workspace is the root of the translator page: the source and target
editors of every field and the status shown next to the trigger.

A workspace moves between two states:

	Idle --Translate--> Translating --(success or failure)--> Idle

There is no cancellation once a sequence has started.
*/
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/core/document"
	"codeberg.org/plae/plae/core/editor"
	"codeberg.org/plae/plae/core/orchestrator"
	"codeberg.org/plae/plae/core/translator"
)

// State of a workspace.
type State int

const (
	Idle State = iota
	Translating
)

func (s State) String() string {
	if s == Translating {
		return "translating"
	}

	return "idle"
}

// Status is what the page shows about the last translation.
type Status struct {
	Busy bool
	// Error is a human-readable message, empty when there is none.
	Error string
}

var (
	// ErrBusy is returned by Translate while a sequence is already running.
	ErrBusy = errors.New("a translation is already in progress")

	errNoSuchField = errors.New("no such field")
	errUnknownMark = errors.New("unknown formatting command")
)

// Workspace owns the editors of every field and the UI status.
type Workspace struct {
	orchestrator *orchestrator.Orchestrator
	fields       []orchestrator.Pair

	mu     sync.RWMutex
	state  State
	status Status
}

// New creates a workspace with n empty fields (at least one).
func New(t translator.Translator, n int) *Workspace {
	n = max(n, 1)

	fields := make([]orchestrator.Pair, n)
	for i := range fields {
		fields[i] = orchestrator.Pair{Source: editor.NewSource(), Target: editor.NewTarget()}
	}

	return &Workspace{
		orchestrator: orchestrator.New(t),
		fields:       fields,
	}
}

// Len returns the number of fields.
func (w *Workspace) Len() int {
	return len(w.fields)
}

// Field returns the editors of field i, which must be in [0, Len()).
func (w *Workspace) Field(i int) orchestrator.Pair {
	return w.fields[i]
}

// Fields returns the editors of every field, in order.
func (w *Workspace) Fields() []orchestrator.Pair {
	return w.fields
}

// State reports whether a translation is running.
func (w *Workspace) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.state
}

func (w *Workspace) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.status
}

// TriggerDisabled reports whether the translate trigger must be disabled.
func (w *Workspace) TriggerDisabled() bool {
	return w.Status().Busy
}

// Translate runs one translation sequence over all fields.
//
// It fails with ErrBusy, without touching the status, while another sequence
// is running. Otherwise the status is set busy with no error, the fields are
// translated in order, and the workspace returns to Idle with any failure
// stored as a single message in the locale of ctx. The error is also returned.
func (w *Workspace) Translate(ctx context.Context) error {
	w.mu.Lock()
	if w.state == Translating {
		w.mu.Unlock()

		return ErrBusy
	}

	w.state = Translating
	w.status = Status{Busy: true}
	w.mu.Unlock()

	written, err := w.orchestrator.TranslateAll(ctx, w.fields)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = Idle
	w.status = Status{Error: translator.Describe(ctx, err)}

	if err != nil {
		log.Ctx(ctx).Warn().
			Err(err).
			Int("written", written).
			Int("fields", len(w.fields)).
			Msg("Translation failed")

		return err
	}

	log.Ctx(ctx).Debug().
		Int("written", written).
		Int("fields", len(w.fields)).
		Msg("Translation finished")

	return nil
}

// Fail records err as the current error without running a translation.
func (w *Workspace) Fail(ctx context.Context, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.status.Error = translator.Describe(ctx, err)
}

// Format toggles mark over sel in the source editor of field i.
// It reports whether the content changed.
func (w *Workspace) Format(field int, mark document.Mark, sel document.Selection) (bool, error) {
	if field < 0 || field >= len(w.fields) {
		return false, fmt.Errorf("%w: %d", errNoSuchField, field+1)
	}

	source := w.fields[field].Source

	switch mark {
	case document.Bold:
		return source.ToggleBold(sel), nil
	case document.Italic:
		return source.ToggleItalic(sel), nil
	default:
		return false, fmt.Errorf("%w: %s", errUnknownMark, mark)
	}
}
