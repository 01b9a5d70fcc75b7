// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
)

type entry struct {
	plural string
	files  []string
}

// catalogue collects msgids and the files that use them. References are
// kept per file so moving code within a file does not change the POT.
type catalogue struct {
	entries map[string]*entry
}

func newCatalogue() *catalogue {
	return &catalogue{entries: make(map[string]*entry)}
}

func (c *catalogue) Len() int {
	return len(c.entries)
}

// add records msgid as used in file. A plural form, once seen, sticks.
func (c *catalogue) add(msgid, plural, file string) {
	e, ok := c.entries[msgid]
	if !ok {
		e = &entry{}
		c.entries[msgid] = e
	}

	if plural != "" {
		e.plural = plural
	}

	if !slices.Contains(e.files, file) {
		e.files = append(e.files, file)
	}
}

type potHeader struct {
	Version string
	Created time.Time
}

// writePOT writes the catalogue in msgid order.
func (c *catalogue) writePOT(w io.Writer, h potHeader) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, `msgid ""`)
	fmt.Fprintln(bw, `msgstr ""`)
	fmt.Fprintf(bw, "\"Project-Id-Version: Plae %s\\n\"\n", h.Version)
	fmt.Fprintf(bw, "\"POT-Creation-Date: %s\\n\"\n", h.Created.Format("2006-01-02 15:04-0700"))
	fmt.Fprintln(bw, `"Language: en\n"`)
	fmt.Fprintln(bw, `"SPDX-License-Identifier: GFDL-1.3-only\n"`)
	fmt.Fprintln(bw, `"Report-Msgid-Bugs-To: https://codeberg.org/plae/plae/issues\n"`)
	fmt.Fprintln(bw, `"MIME-Version: 1.0\n"`)
	fmt.Fprintln(bw, `"Content-Type: text/plain; charset=UTF-8\n"`)
	fmt.Fprintln(bw, `"Content-Transfer-Encoding: 8bit\n"`)
	fmt.Fprintln(bw, `"Plural-Forms: nplurals=2; plural=(n != 1);\n"`)

	for _, msgid := range slices.Sorted(maps.Keys(c.entries)) {
		e := c.entries[msgid]
		files := slices.Sorted(slices.Values(e.files))

		fmt.Fprintln(bw)

		if names := placeholders(msgid, e.plural); len(names) > 0 {
			fmt.Fprintf(bw, "#. Keep the placeholders: {{.%s}}\n", strings.Join(names, "}} {{."))
		}

		fmt.Fprintf(bw, "#: %s\n", strings.Join(files, " "))
		fmt.Fprintf(bw, "msgid %q\n", msgid)

		if e.plural != "" {
			fmt.Fprintf(bw, "msgid_plural %q\n", e.plural)
			fmt.Fprintln(bw, `msgstr[0] ""`)
			fmt.Fprintln(bw, `msgstr[1] ""`)
		} else {
			fmt.Fprintln(bw, `msgstr ""`)
		}
	}

	return bw.Flush()
}

// checkUpToDate compares generated with the POT at path, ignoring the
// header lines that change on every run.
func checkUpToDate(path, generated string) error {
	current, err := os.ReadFile(path) // #nosec G304 -- path comes from the -o flag
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if stripVolatileHeaders(string(current)) != stripVolatileHeaders(generated) {
		return fmt.Errorf("%s is out of date, run: go run ./cmd/i18n_extract", path)
	}

	return nil
}

func stripVolatileHeaders(pot string) string {
	lines := strings.Split(pot, "\n")

	return strings.Join(slices.DeleteFunc(lines, func(line string) bool {
		return strings.HasPrefix(line, `"POT-Creation-Date:`) || strings.HasPrefix(line, `"Project-Id-Version:`)
	}), "\n")
}
