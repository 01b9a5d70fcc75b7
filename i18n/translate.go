// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"text/template"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// templateCache holds compiled templates keyed by their text.
var templateCache sync.Map

// Vars are the named values substituted into a translated message.
type Vars map[string]any

// UserError is an error whose message is already translated and can be
// shown directly to the end user.
type UserError struct {
	msg string
}

// NewUserError translates msgid in the locale of ctx and wraps it as an error.
func NewUserError(ctx context.Context, msgid string, kv ...any) *UserError {
	return &UserError{msg: Tr(ctx, msgid, kv...)}
}

func (e *UserError) Error() string {
	return e.msg
}

// Tr returns the translation of msgid, which should be the original English
// UI text. Key-value pairs fill text/template placeholders such as {{.Body}}.
//
// A missing translation returns msgid unchanged, or visibly wrapped in strict mode.
func Tr(ctx context.Context, msgid string, kv ...any) string {
	return translate(ctx, msgid, "", 0, false, v(kv...))
}

// TrN translates a singular or plural message depending on n.
// Without a translation the singular form is used when n == 1.
func TrN(ctx context.Context, singular, plural string, n int, kv ...any) string {
	return translate(ctx, singular, plural, n, true, v(kv...))
}

func translate(ctx context.Context, singular, plural string, n int, pluralMode bool, vars Vars) string {
	loc, matched := resolveLocale(TagFrom(ctx))

	base := singular
	if pluralMode && n != 1 {
		base = plural
	}

	text, found := lookup(loc, singular, plural, n, pluralMode)
	if !found {
		text = base

		if strictMissingKeys() {
			logMissingOnce(strippedTagString(matched), singular)

			text = "⟦" + base + "⟧"
		}
	}

	return render(matched, text, vars)
}

func lookup(loc *gotext.Locale, singular, plural string, n int, pluralMode bool) (string, bool) {
	if loc == nil {
		return "", false
	}

	if pluralMode {
		if !loc.IsTranslatedND(poDomain, singular, n) {
			return "", false
		}

		return loc.GetND(poDomain, singular, plural, n), true
	}

	// IsTranslatedD asks about n == 0, which picks a plural slot when the
	// catalogue has no Plural-Forms header
	if !loc.IsTranslatedND(poDomain, singular, 1) {
		return "", false
	}

	return loc.GetD(poDomain, singular), true
}

// render executes s as a text/template over data.
func render(locale language.Tag, s string, data Vars) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	var tmpl *template.Template

	if cached, ok := templateCache.Load(s); ok {
		tmpl, _ = cached.(*template.Template)
	} else {
		parsed, err := template.New("msg").Option("missingkey=error").Parse(s)
		if err != nil {
			Logger.Warn().Err(err).Str("locale", locale.String()).Str("text", s).Msg("Message template parse error")

			return s
		}

		templateCache.Store(s, parsed)
		tmpl = parsed
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(data)); err != nil {
		if strictMissingKeys() {
			return "⟦" + s + "⟧"
		}

		Logger.Warn().Err(err).Str("locale", locale.String()).Str("text", s).Msg("Message template execute error")

		return s
	}

	return buf.String()
}

// resolveLocale matches t to a loaded locale. Without a matcher it
// returns nil and baseTag.
func resolveLocale(t language.Tag) (*gotext.Locale, language.Tag) {
	if matcher == nil {
		return nil, baseTag
	}

	// the index avoids the -u-rg- extension MatchStrings adds for regional tags
	_, index := language.MatchStrings(matcher, t.String())
	matched := supportedTags[index]

	return localesByTag[matched.String()], matched
}

// v builds Vars from alternating key, value pairs.
// Panics on programmer error.
func v(kv ...any) Vars {
	if len(kv)%2 != 0 {
		panic("i18n: odd number of arguments, want key, value pairs")
	}

	m := make(Vars, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("i18n: key must be string")
		}

		m[k] = kv[i+1]
	}

	return m
}
