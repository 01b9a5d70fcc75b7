// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package assets holds the files embedded into the plae binary: the static web
assets below assets/ and the gettext catalogues below po/.

The main package embeds them and installs the tree with Set.
*/
package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

// files is empty until Set is called.
var files fs.FS = embed.FS{}

// Set installs the embedded tree.
func Set(fsys fs.FS) {
	files = fsys
}

// Static is the tree served by the file server, rooted at assets/.
func Static() (fs.FS, error) {
	static, err := fs.Sub(files, "assets")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded assets: %w", err)
	}

	return static, nil
}

// Catalogues is the tree holding the po/ directory.
func Catalogues() fs.FS {
	return files
}
