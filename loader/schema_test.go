package loader

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateSchema_ValidMinimal(t *testing.T) {
	yaml := `
config:
  - library_name = "m"
  - arg_convert = default
functions:
  - fn Ping() -> i32
`
	if err := ValidateSchema([]byte(yaml)); err != nil {
		t.Errorf("expected valid schema, got error: %v", err)
	}
}

func TestValidateSchema_MappingFunction(t *testing.T) {
	yaml := `
config:
  - library_name = "m"
functions:
  - sig: 'fn Draw(s: &str) -> i32'
    doc: draws
    attrs:
      - as_result
    args:
      s:
        - arg_convert = none
`
	if err := ValidateSchema([]byte(yaml)); err != nil {
		t.Errorf("expected valid schema, got error: %v", err)
	}
}

func TestValidateSchema_EmptyFunctions(t *testing.T) {
	yaml := `
config:
  - library_name = "m"
functions: []
`
	if err := ValidateSchema([]byte(yaml)); err == nil {
		t.Error("expected error for empty functions list")
	}
}

func TestValidateSchema_BadArgName(t *testing.T) {
	yaml := `
config:
  - library_name = "m"
functions:
  - sig: 'fn F(a: i32)'
    args:
      "not a name":
        - arg_convert = none
`
	if err := ValidateSchema([]byte(yaml)); err == nil {
		t.Error("expected error for invalid args key")
	}
}

func TestValidateSchema_InvalidYAML(t *testing.T) {
	err := ValidateSchema([]byte("config: [unterminated"))
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "parsing YAML") {
		t.Errorf("expected YAML parse error, got %v", err)
	}
}

func TestValidateSchemaJSON(t *testing.T) {
	doc := `{"config": ["library_name = \"m\""], "functions": ["fn F()"]}`
	if err := ValidateSchemaJSON([]byte(doc)); err != nil {
		t.Errorf("expected valid JSON document, got error: %v", err)
	}
	if err := ValidateSchemaJSON([]byte(`{"functions": ["fn F()"]}`)); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestSchemaJSON_IsValidJSON(t *testing.T) {
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(SchemaJSON()), &v); err != nil {
		t.Fatalf("embedded schema is not valid JSON: %v", err)
	}
	if v["title"] != "cffigen definition" {
		t.Errorf("unexpected schema title %v", v["title"])
	}
}

func TestValidateSchema_SignatureQuoting(t *testing.T) {
	tests := []struct {
		name    string
		fn      string
		wantErr string
	}{
		{"quoted multi-parameter", `'fn SetGraphMode(width: i32, height: i32, color_bits: i32) -> i32'`, ""},
		{"quoted single parameter", `'fn ChangeWindowMode(mode: i32) -> i32'`, ""},
		{"double-quoted", `"fn Name(s: &str) -> i32"`, ""},
		{"bare without parameters", `fn Ping() -> i32`, ""},
		{"bare multi-parameter", `fn SetGraphMode(width: i32, height: i32) -> i32`, "quote function signatures"},
		{"bare single parameter", `fn ChangeWindowMode(mode: i32) -> i32`, "was read as a YAML mapping"},
	}
	for _, tt := range tests {
		doc := "config:\n  - library_name = \"m\"\nfunctions:\n  - " + tt.fn + "\n"
		err := ValidateSchema([]byte(doc))
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error = %v, want %q", tt.name, err, tt.wantErr)
		}
	}
}
