// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package views holds the templ components that make up Plae's pages.

The *_templ.go files are generated from the .templ sources; run
`go tool templ generate` after editing a template. Editor markup is passed
through document.Sanitize before it is written with templ.Raw.
*/
package views

//go:generate go tool templ generate
