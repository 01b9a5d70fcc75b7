// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n translates the user interface with GNU gettext .po catalogues.

Use the original English UI text as the msgid:

	i18n.Tr(ctx, "Translate")
	i18n.Tr(ctx, "Translation failed: {{.Body}}", "Body", body)
	i18n.TrN(ctx, "{{.Count}} field", "{{.Count}} fields", n, "Count", n)

The Thai catalogue lives in po/th.po; po/plae.pot is regenerated with
cmd/i18n_extract.

By default a missing translation returns the msgid unchanged. With
Internationalization.StrictMissingKeys enabled, missing lookups are logged
once per locale and key and the text is wrapped as "⟦...⟧".
*/
package i18n
