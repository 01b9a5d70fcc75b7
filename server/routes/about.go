// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/views"
)

// AboutPage is the handler for the /about page.
func AboutPage(w http.ResponseWriter, r *http.Request) error {
	pageData := views.AboutData{
		Version:      config.BuildVersion,
		Revision:     config.Global.Build.Revision(),
		Backend:      string(config.Global.Frontend.Backend),
		Fields:       config.Global.Frontend.Fields,
		StartingTime: config.Global.Instance.StartingTime,
		RepoURL:      config.Global.Instance.RepoURL,
	}

	return views.About(pageData).Render(r.Context(), w)
}
