// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ParseURL parses a URL string that must carry both a scheme and a host.
// A trailing slash on the path is removed.
func ParseURL(urlStr, urlType string) (*url.URL, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s URL: %w", urlType, err)
	}

	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf(
			"%s URL is invalid: %s. Please specify a complete URL with scheme and host, e.g. https://example.com",
			urlType,
			urlStr)
	}

	parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/")

	return parsedURL, nil
}

// GetFormValue retrieves the value of a form parameter by name.
//
// If the parameter is not present, it returns the provided default value or an empty string.
func GetFormValue(r *http.Request, name string, defaultValue ...string) string {
	if err := r.ParseForm(); err == nil {
		if v := r.FormValue(name); v != "" {
			return v
		}
	}

	if len(defaultValue) > 0 {
		return defaultValue[0]
	}

	return ""
}

// GetFormValues returns every value submitted in the request body for a
// repeated form parameter, in order. Query parameters are ignored.
func GetFormValues(r *http.Request, name string) []string {
	if err := r.ParseForm(); err != nil {
		return nil
	}

	return r.PostForm[name]
}

// GetFormInt parses a form parameter as an integer, returning defaultValue
// when it is missing or malformed.
func GetFormInt(r *http.Request, name string, defaultValue int) int {
	n, err := strconv.Atoi(GetFormValue(r, name))
	if err != nil {
		return defaultValue
	}

	return n
}
