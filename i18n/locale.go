// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// BaseLocale is the locale of the msgids themselves.
const BaseLocale = "en"

var baseTag = language.Make(BaseLocale)

// Languages returns the supported language tags, sorted by tag string.
//
// Setup must be called successfully before using Languages; otherwise it panics.
func Languages() []language.Tag {
	if matcher == nil {
		panic("i18n: Setup must be called before calling Languages")
	}

	out := slices.Clone(supportedTags)
	slices.SortFunc(out, func(a, b language.Tag) int {
		return strings.Compare(a.String(), b.String())
	})

	return out
}

// Name returns the native display name of t, e.g. "ไทย" for Thai.
func Name(t language.Tag) string {
	switch base, _ := t.Base(); base.String() {
	case "th":
		return "ไทย"
	case "en":
		return "English"
	default:
		return t.String()
	}
}
