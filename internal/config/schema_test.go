// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package config_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/magicsessions/magicsessions/internal/config"
)

func TestGenerateSchema(t *testing.T) {
	data, err := config.GenerateSchema()
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if schema["$id"] != config.SchemaID {
		t.Errorf("$id = %v, want %s", schema["$id"], config.SchemaID)
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties")
	}
	for _, key := range []string{"server", "metrics", "database", "auth", "log"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}

func TestValidateSchema_Valid(t *testing.T) {
	yaml := `
server:
  addr: ":8080"
  shutdown_timeout: 10s
database:
  url: postgres://localhost/magic
  max_conns: 4
auth:
  jwt:
    issuer: magicsessions
    refresh_token_lifetime: 168h
  lockout:
    threshold: 5
    duration: 15m
  blocked_email_domains:
    - mailinator.com
    - "*.tempmail.*"
  sweep_interval: 1h
log:
  format: text
  level: debug
`
	if err := config.ValidateSchema([]byte(yaml)); err != nil {
		t.Errorf("ValidateSchema() error = %v, want nil", err)
	}
}

func TestValidateSchema_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown top-level key", yaml: "listen: :8080\n"},
		{name: "unknown nested key", yaml: "database:\n  uri: postgres://x\n"},
		{name: "bad duration", yaml: "auth:\n  sweep_interval: hourly\n"},
		{name: "bad log format", yaml: "log:\n  format: xml\n"},
		{name: "threshold below minimum", yaml: "auth:\n  lockout:\n    threshold: 0\n"},
		{name: "wrong type", yaml: "database:\n  max_conns: many\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := config.ValidateSchema([]byte(tt.yaml)); err == nil {
				t.Errorf("ValidateSchema() expected error for %s", tt.name)
			}
		})
	}
}

func TestValidateSchema_EmptyAndMalformed(t *testing.T) {
	if err := config.ValidateSchema(nil); err == nil {
		t.Error("ValidateSchema(nil) expected error")
	}
	if err := config.ValidateSchema([]byte("server: [unclosed")); err == nil {
		t.Error("ValidateSchema() expected error for malformed YAML")
	}
}

func TestFormatSchemaError(t *testing.T) {
	if got := config.FormatSchemaError(nil); got != "" {
		t.Errorf("FormatSchemaError(nil) = %q, want empty", got)
	}
	err := errors.New("schema validation failed: at '/log/format': value must be one of 'json', 'text'")
	want := "at '/log/format': value must be one of 'json', 'text'"
	if got := config.FormatSchemaError(err); got != want {
		t.Errorf("FormatSchemaError() = %q, want %q", got, want)
	}

	err = errors.New("schema validation failed: jsonschema validation failed with 'config.schema.json#'\n- at '/server': additional properties 'adr' not allowed")
	want = "- at '/server': additional properties 'adr' not allowed"
	if got := config.FormatSchemaError(err); got != want {
		t.Errorf("FormatSchemaError() = %q, want %q", got, want)
	}
}
