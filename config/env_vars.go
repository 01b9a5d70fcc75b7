// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	errExpectedPointerToStruct = errors.New("expected a pointer to a struct")
	errUnsupportedSliceType    = errors.New("unsupported slice type")
	errUnsupportedFieldType    = errors.New("unsupported field type")
)

var durationType = reflect.TypeFor[time.Duration]()

// envBinding ties a settable struct field to the environment variable named in its `env` tag.
type envBinding struct {
	field     reflect.Value
	name      string // Go field name, for error messages
	envVar    string
	overwrite bool
}

// readEnv populates the struct pointed to by spec with values from
// environment variables named by `env:"NAME[,overwrite]"` struct tags.
//
// Fields without the overwrite option are only set while they still hold
// their zero value, so YAML values win over the environment for them.
func readEnv(spec any) error {
	structValue := reflect.ValueOf(spec)
	if structValue.Kind() != reflect.Pointer || structValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", errExpectedPointerToStruct, spec)
	}

	for _, binding := range collectEnvBindings(structValue.Elem()) {
		envValue, exists := os.LookupEnv(binding.envVar)
		if !exists {
			continue
		}

		if !binding.overwrite && !binding.field.IsZero() {
			continue
		}

		if err := setFieldValue(binding, envValue); err != nil {
			return err
		}
	}

	return nil
}

// collectEnvBindings walks nested structs depth-first and returns every tagged, settable field.
func collectEnvBindings(structValue reflect.Value) []envBinding {
	var bindings []envBinding

	structType := structValue.Type()

	for i := range structValue.NumField() {
		field := structValue.Field(i)
		fieldType := structType.Field(i)

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			if field.Kind() == reflect.Struct && field.Type() != durationType {
				bindings = append(bindings, collectEnvBindings(field)...)
			}

			continue
		}

		if !field.CanSet() {
			continue
		}

		parts := strings.Split(tag, ",")

		bindings = append(bindings, envBinding{
			field:     field,
			name:      fieldType.Name,
			envVar:    parts[0],
			overwrite: slices.Contains(parts[1:], "overwrite"),
		})
	}

	return bindings
}

// setFieldValue parses envValue according to the field's kind and stores it.
func setFieldValue(binding envBinding, envValue string) error {
	field := binding.field

	parseErr := func(kind string, err error) error {
		return fmt.Errorf("failed to parse %s for %s from env var %s (%s): %w",
			kind, binding.name, binding.envVar, envValue, err)
	}

	switch {
	case field.Type() == durationType:
		parsed, err := time.ParseDuration(envValue)
		if err != nil {
			return parseErr("duration", err)
		}

		field.SetInt(int64(parsed))
	case field.Kind() == reflect.String:
		field.SetString(envValue)
	case field.CanInt():
		parsed, err := strconv.ParseInt(envValue, 10, 64)
		if err != nil {
			return parseErr("int", err)
		}

		field.SetInt(parsed)
	case field.CanFloat():
		parsed, err := strconv.ParseFloat(envValue, 64)
		if err != nil {
			return parseErr("float", err)
		}

		field.SetFloat(parsed)
	case field.Kind() == reflect.Bool:
		parsed, err := strconv.ParseBool(envValue)
		if err != nil {
			return parseErr("bool", err)
		}

		field.SetBool(parsed)
	case field.Kind() == reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%w for field %s", errUnsupportedSliceType, binding.name)
		}

		field.Set(reflect.ValueOf(splitList(envValue)))
	default:
		return fmt.Errorf("%w for field %s: %s", errUnsupportedFieldType, binding.name, field.Kind())
	}

	return nil
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	values := strings.Split(s, ",")
	out := make([]string, 0, len(values))

	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
