// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"codeberg.org/plae/plae/server/assets"
)

// poDomain is the gettext domain loaded under each locale.
const poDomain = "plae"

var (
	// localesByTag maps canonical BCP 47 tags, for example "en" or "th",
	// to their loaded gotext.Locale.
	localesByTag map[string]*gotext.Locale

	// supportedTags holds the tags for which a locale was loaded, base first.
	supportedTags []language.Tag

	// matcher is derived from the loaded locales.
	matcher language.Matcher
)

// Setup loads the gettext catalogues embedded in the binary, see
// [assets.Catalogues].
func Setup() error {
	return SetupFS(assets.Catalogues())
}

// SetupFS loads every po/<locale>.po file found in fsys and builds the
// language matcher. The <locale> part may use hyphens or underscores
// ("pt-BR.po", "pt_BR.po"). The template po/plae.pot is ignored. The base
// locale is always supported and acts as the fallback.
//
// Calling SetupFS again replaces the previously loaded locales.
func SetupFS(fsys fs.FS) error {
	Logger = log.With().Str("sys", "i18n").Logger()

	localesByTag = make(map[string]*gotext.Locale)
	supportedTags = nil
	matcher = nil

	entries, err := fs.ReadDir(fsys, "po")
	if err != nil {
		return fmt.Errorf("failed to read po directory: %w", err)
	}

	var loaded []language.Tag

	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fileName, ".po") {
			continue
		}

		t, err := language.Parse(strings.ReplaceAll(strings.TrimSuffix(fileName, ".po"), "_", "-"))
		if err != nil {
			Logger.Warn().Err(err).Str("file", fileName).Msg("Skipping invalid locale file")

			continue
		}

		canonical := t.String()

		po := gotext.NewPoFS(fsys)
		po.ParseFile(path.Join("po", fileName))

		// the base path is unused when translators are added by hand
		loc := gotext.NewLocale("", canonical)
		loc.AddTranslator(poDomain, po)

		localesByTag[canonical] = loc
		loaded = append(loaded, t)

		Logger.Info().
			Str("locale", canonical).
			Str("domain", poDomain).
			Msg("Loaded locale")
	}

	sort.Slice(loaded, func(i, j int) bool { return loaded[i].String() < loaded[j].String() })

	// baseTag first makes it the matcher's fallback
	all := make([]language.Tag, 0, len(loaded)+1)
	all = append(all, baseTag)

	for _, t := range loaded {
		if t != baseTag {
			all = append(all, t)
		}
	}

	matcher = language.NewMatcher(all)
	supportedTags = all

	return nil
}
