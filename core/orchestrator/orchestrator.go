// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package orchestrator moves content from source editors through a
// translator into target editors.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/core/editor"
	"codeberg.org/plae/plae/core/translator"
)

// Pair is one source editor and the target editor that receives its translation.
type Pair struct {
	Source *editor.Editor
	Target *editor.Editor
}

// Orchestrator sequences translations over a Translator.
type Orchestrator struct {
	translator translator.Translator
}

func New(t translator.Translator) *Orchestrator {
	return &Orchestrator{translator: t}
}

// Translate sends the content of source to the translator and writes the
// result into target verbatim.
//
// An empty source is a no-op: nothing is sent, target is left alone and the
// result is false. On failure target is left alone too.
func (o *Orchestrator) Translate(ctx context.Context, source, target *editor.Editor) (bool, error) {
	if source.IsEmpty() {
		return false, nil
	}

	translated, err := o.translator.Translate(ctx, source.GetContent())
	if err != nil {
		return false, err
	}

	target.SetContent(translated)

	return true, nil
}

// TranslateAll translates pairs strictly in order, each call awaited before
// the next begins. The first failure aborts the rest: earlier targets keep
// their translation and later ones are not touched.
//
// It returns the number of targets written.
func (o *Orchestrator) TranslateAll(ctx context.Context, pairs []Pair) (int, error) {
	written := 0

	for i, pair := range pairs {
		ok, err := o.Translate(ctx, pair.Source, pair.Target)
		if err != nil {
			log.Ctx(ctx).Debug().
				Err(err).
				Int("field", i+1).
				Int("written", written).
				Msg("Translation aborted")

			return written, fmt.Errorf("field %d: %w", i+1, err)
		}

		if ok {
			written++
		}
	}

	return written, nil
}
