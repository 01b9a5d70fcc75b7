// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command i18n_extract regenerates po/plae.pot from the msgids used by the
// Go and templ sources of the module.
//
//	go run ./cmd/i18n_extract          # rewrite po/plae.pot
//	go run ./cmd/i18n_extract -check   # fail when po/plae.pot is stale
//
// Every Tr, TrN and NewUserError call is also checked: the key-value
// arguments must fill exactly the {{.Name}} placeholders of the message.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/tools/go/packages"
)

func main() {
	outPath := flag.String("o", "po/plae.pot", "output file, relative to the module root")
	check := flag.Bool("check", false, "exit with an error instead of writing when the output file is out of date")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(*outPath, *check); err != nil {
		log.Fatal().Err(err).Msg("i18n_extract failed")
	}
}

func run(outPath string, check bool) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	root := moduleRoot(wd)

	pkgs, err := packages.Load(&packages.Config{Mode: packages.LoadAllSyntax, Dir: root}, "./...")
	if err != nil {
		return fmt.Errorf("failed to load packages: %w", err)
	}

	if packages.PrintErrors(pkgs) > 0 {
		return errors.New("failed to load packages due to errors")
	}

	cat := newCatalogue()
	ex := newExtractor(root, cat)

	for _, pkg := range pkgs {
		ex.inspect(pkg)
	}

	for _, p := range ex.problems {
		log.Error().Str("pos", p.pos).Str("msgid", p.msgid).Msg(p.msg)
	}

	if len(ex.problems) > 0 {
		return fmt.Errorf("%d message call(s) do not match their placeholders", len(ex.problems))
	}

	var pot bytes.Buffer
	if err := cat.writePOT(&pot, potHeader{Version: detectVersion(root), Created: time.Now().UTC()}); err != nil {
		return err
	}

	outPath = filepath.Join(root, outPath)

	if check {
		return checkUpToDate(outPath, pot.String())
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outPath, pot.Bytes(), 0o644); err != nil { // #nosec G306 -- the POT is public
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	log.Info().
		Str("path", outPath).
		Int("messages", cat.Len()).
		Msg("Wrote message template")

	return nil
}

// detectVersion describes the checkout with git, or returns "dev".
func detectVersion(root string) string {
	cmd := exec.Command("git", "describe", "--tags", "--always", "--dirty")
	cmd.Dir = root

	out, err := cmd.Output()
	if err != nil {
		return "dev"
	}

	return strings.TrimSpace(string(out))
}

// moduleRoot is the nearest directory at or above wd holding a go.mod file.
// References in the POT are relative to it.
func moduleRoot(wd string) string {
	dir := filepath.Clean(wd)

	for {
		if fi, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !fi.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return wd
		}

		dir = parent
	}
}
