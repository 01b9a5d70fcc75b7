// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"codeberg.org/plae/plae/config"
)

var (
	// Logger is the logger used by package i18n.
	Logger zerolog.Logger = log.With().Str("sys", "i18n").Logger()

	// missingKeyOnce deduplicates missing msgid warnings; keyed by locale+"\x00"+msgid.
	missingKeyOnce sync.Map
)

func strictMissingKeys() bool {
	return config.Global.Internationalization.StrictMissingKeys
}

func logMissingOnce(locale, msgid string) {
	id := locale + "\x00" + msgid
	if _, loaded := missingKeyOnce.LoadOrStore(id, struct{}{}); !loaded {
		Logger.Warn().
			Str("locale", locale).
			Str("key", msgid).
			Msg("Missing i18n translation")
	}
}

// strippedTagString keeps only base, script and region.
func strippedTagString(tag language.Tag) string {
	b, s, r := tag.Raw()
	stripped, _ := language.Compose(b, s, r)

	return stripped.String()
}
