// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// These tests keep the Go field tags, the legacy aliases and the CUE schema in
// step, so a key added to one place cannot be silently rejected by another.

func cueFieldNames(t *testing.T) map[string]bool {
	t.Helper()

	schema := cuecontext.New().CompileBytes(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if def.Err() != nil {
		t.Fatalf("failed to lookup #Config: %v", def.Err())
	}

	iter, err := def.Fields(cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}

	fields := make(map[string]bool)
	for iter.Next() {
		fields[strings.TrimSuffix(iter.Selector().String(), "?")] = true
	}
	return fields
}

func goFieldNames(t *testing.T) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)
	typ := reflect.TypeFor[Config]()
	for i := range typ.NumField() {
		tag := typ.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = true
	}
	return fields
}

func TestConfigSchemaSync(t *testing.T) {
	t.Parallel()

	cueFields := cueFieldNames(t)
	goFields := goFieldNames(t)

	for name := range goFields {
		if !cueFields[name] {
			t.Errorf("Config field %q missing from #Config", name)
		}
	}

	legacy := map[string]bool{"core_modules": true, "additional_modules": true}
	for _, a := range legacyAliases {
		legacy[a[0]] = true
		if !goFields[a[1]] {
			t.Errorf("alias %q targets unknown key %q", a[0], a[1])
		}
	}

	for name := range cueFields {
		if !goFields[name] && !legacy[name] {
			t.Errorf("#Config field %q has no Config field or alias", name)
		}
	}
}
