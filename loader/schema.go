package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// schemaJSON is the embedded JSON Schema for definition files. It checks
// structure only; signatures and annotations are parsed afterwards.
var schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://cffigen.dev/schemas/definition/v1",
  "title": "cffigen definition",
  "description": "Foreign functions of one C-ABI library and the configuration their wrappers are generated under.",
  "type": "object",
  "required": ["config", "functions"],
  "additionalProperties": false,
  "properties": {
    "package": { "type": "string", "pattern": "^[a-z][a-z0-9_]*$" },
    "description": { "type": "string" },
    "config": {
      "type": "array",
      "items": { "$ref": "#/$defs/annotation" },
      "minItems": 1
    },
    "functions": {
      "type": "array",
      "items": { "$ref": "#/$defs/function" },
      "minItems": 1
    }
  },
  "$defs": {
    "annotation": {
      "type": "string",
      "pattern": "^\\s*[A-Za-z_][A-Za-z0-9_]*\\s*(=\\s*\\S.*)?$"
    },
    "signature": {
      "type": "string",
      "pattern": "\\bfn\\s+[A-Za-z_][A-Za-z0-9_]*\\s*\\("
    },
    "function": {
      "oneOf": [
        { "$ref": "#/$defs/signature" },
        {
          "type": "object",
          "required": ["sig"],
          "additionalProperties": false,
          "properties": {
            "sig": { "$ref": "#/$defs/signature" },
            "doc": { "type": "string" },
            "attrs": {
              "type": "array",
              "items": { "$ref": "#/$defs/annotation" }
            },
            "args": {
              "type": "object",
              "propertyNames": { "pattern": "^[A-Za-z_][A-Za-z0-9_]*$" },
              "additionalProperties": {
                "type": "array",
                "items": { "$ref": "#/$defs/annotation" }
              }
            }
          }
        }
      ]
    }
  }
}`

var compiledSchema *jsonschema.Schema

func init() {
	// Decode the schema JSON into a generic value first
	var schemaDoc interface{}
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to decode schema JSON: %v", err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add schema resource: %v", err))
	}
	var err error
	compiledSchema, err = c.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("failed to compile schema: %v", err))
	}
}

// SchemaJSON returns the embedded schema text.
func SchemaJSON() string {
	return schemaJSON
}

// ValidateSchema validates raw YAML against the definition schema.
func ValidateSchema(yamlData []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(yamlData, &raw); err != nil {
		if strings.Contains(err.Error(), "mapping values are not allowed") {
			return fmt.Errorf("parsing YAML: %w (quote function signatures that contain \": \")", err)
		}
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if err := checkUnquotedSignatures(raw); err != nil {
		return err
	}

	converted := convertYAMLToJSON(raw)

	err := compiledSchema.Validate(converted)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// checkUnquotedSignatures reports a bare signature with one parameter,
// which YAML reads as a single-entry mapping keyed by "fn Name(param".
func checkUnquotedSignatures(raw interface{}) error {
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	fns, _ := doc["functions"].([]interface{})
	for i, f := range fns {
		m, ok := f.(map[string]interface{})
		if !ok || len(m) != 1 {
			continue
		}
		for k, v := range m {
			if strings.HasPrefix(k, "fn ") {
				return fmt.Errorf("functions[%d]: signature %q was read as a YAML mapping; quote it", i, fmt.Sprintf("%s: %v", k, v))
			}
		}
	}
	return nil
}

// convertYAMLToJSON converts YAML-parsed values to the types the schema
// validator expects: numbers as float64, nested maps and lists converted
// recursively.
func convertYAMLToJSON(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			result[k] = convertYAMLToJSON(val)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, val := range v {
			result[i] = convertYAMLToJSON(val)
		}
		return result
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}

// ValidateSchemaJSON validates a JSON document against the schema.
func ValidateSchemaJSON(jsonData []byte) error {
	var raw interface{}
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	err := compiledSchema.Validate(raw)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
