// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package workspace_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/plae/plae/core/document"
	"codeberg.org/plae/plae/core/translator"
	"codeberg.org/plae/plae/core/workspace"
)

func echo(_ context.Context, html string) (string, error) {
	return "EN:" + html, nil
}

func TestTranslateSuccess(t *testing.T) {
	t.Parallel()

	ws := workspace.New(translator.TranslatorFunc(echo), 2)
	ws.Field(0).Source.SetContent("<p>ก</p>")
	ws.Field(1).Source.SetContent("<p>ข</p>")

	require.NoError(t, ws.Translate(context.Background()))

	assert.Equal(t, "EN:<p>ก</p>", ws.Field(0).Target.GetContent())
	assert.Equal(t, "EN:<p>ข</p>", ws.Field(1).Target.GetContent())
	assert.Equal(t, workspace.Status{}, ws.Status())
	assert.Equal(t, workspace.Idle, ws.State())
}

func TestTranslateFailureSetsError(t *testing.T) {
	t.Parallel()

	tr := translator.TranslatorFunc(func(context.Context, string) (string, error) {
		return "", translator.ErrMissingAPIKey
	})

	ws := workspace.New(tr, 1)
	ws.Field(0).Source.SetContent("<p>ก</p>")

	err := ws.Translate(context.Background())

	require.ErrorIs(t, err, translator.ErrMissingAPIKey)
	assert.NotEmpty(t, ws.Status().Error)
	assert.False(t, ws.Status().Busy)
	assert.False(t, ws.TriggerDisabled())
	assert.Empty(t, ws.Field(0).Target.GetContent())
}

func TestTriggerDisabledWhileTranslating(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})

	tr := translator.TranslatorFunc(func(_ context.Context, html string) (string, error) {
		close(entered)
		<-release

		return html, nil
	})

	ws := workspace.New(tr, 1)
	ws.Field(0).Source.SetContent("<p>ก</p>")
	ws.Fail(context.Background(), errors.New("stale"))

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		assert.NoError(t, ws.Translate(context.Background()))
	}()

	<-entered

	assert.True(t, ws.TriggerDisabled())
	assert.Equal(t, workspace.Translating, ws.State())
	assert.Empty(t, ws.Status().Error, "a new sequence clears the previous error")
	assert.ErrorIs(t, ws.Translate(context.Background()), workspace.ErrBusy)

	close(release)
	wg.Wait()

	assert.False(t, ws.TriggerDisabled())
	assert.Equal(t, workspace.Idle, ws.State())
}

func TestFormat(t *testing.T) {
	t.Parallel()

	ws := workspace.New(translator.TranslatorFunc(echo), 1)
	ws.Field(0).Source.SetContent("<p>abc</p>")

	changed, err := ws.Format(0, document.Bold, document.Selection{From: 0, To: 1})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = ws.Format(0, document.Italic, document.Selection{From: 2, To: 3})
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, "<p><strong>a</strong>b<em>c</em></p>", ws.Field(0).Source.GetContent())

	_, err = ws.Format(3, document.Bold, document.Selection{From: 0, To: 1})
	require.Error(t, err)

	_, err = ws.Format(0, document.Code, document.Selection{From: 0, To: 1})
	require.Error(t, err)
}

func TestNewClampsFieldCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, workspace.New(translator.TranslatorFunc(echo), 0).Len())
	assert.Len(t, workspace.New(translator.TranslatorFunc(echo), 3).Fields(), 3)
}
