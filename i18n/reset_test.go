// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"sync"

	"golang.org/x/text/language"
)

// resetForTests clears global state so tests can exercise SetupFS multiple times.
//
// Only call it from tests, before starting goroutines that use this package.
func resetForTests() {
	missingKeyOnce = sync.Map{}
	templateCache = sync.Map{}

	localesByTag = nil
	supportedTags = nil
	matcher = nil

	baseTag = language.Make(BaseLocale)
}
