package tools

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidateParams checks raw command params against a tool's JSON Schema
// and returns the validated map. Covers the subset of draft-07 the tools
// in this system declare: object root, typed properties, required,
// enum, additionalProperties=false, and one level of array item typing.
// Untrusted LLM output lands here, so unknown schema constructs are
// ignored rather than rejected — the schema author is trusted, the
// caller is not.
func ValidateParams(schema map[string]interface{}, raw map[string]interface{}) (map[string]interface{}, []string) {
	var issues []string
	if raw == nil {
		raw = map[string]interface{}{}
	}
	if schema == nil {
		return raw, nil
	}

	properties, _ := schema["properties"].(map[string]interface{})

	if required, ok := schema["required"].([]interface{}); ok {
		for _, r := range required {
			name, _ := r.(string)
			if name == "" {
				continue
			}
			if _, present := raw[name]; !present {
				issues = append(issues, fmt.Sprintf("missing required parameter %q", name))
			}
		}
	} else if required, ok := schema["required"].([]string); ok {
		for _, name := range required {
			if _, present := raw[name]; !present {
				issues = append(issues, fmt.Sprintf("missing required parameter %q", name))
			}
		}
	}

	if ap, ok := schema["additionalProperties"].(bool); ok && !ap && properties != nil {
		for key := range raw {
			if _, declared := properties[key]; !declared {
				issues = append(issues, fmt.Sprintf("unknown parameter %q", key))
			}
		}
	}

	for name, value := range raw {
		propSchema, ok := properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		issues = append(issues, checkValue(name, value, propSchema)...)
	}

	return raw, issues
}

func checkValue(name string, value interface{}, propSchema map[string]interface{}) []string {
	var issues []string

	wantType, _ := propSchema["type"].(string)
	if wantType != "" && value != nil && !matchesType(value, wantType) {
		issues = append(issues, fmt.Sprintf("parameter %q: expected %s, got %s", name, wantType, jsonTypeName(value)))
		return issues
	}

	if enum, ok := propSchema["enum"].([]interface{}); ok && len(enum) > 0 {
		found := false
		for _, allowed := range enum {
			if reflect.DeepEqual(value, allowed) {
				found = true
				break
			}
		}
		if !found {
			var opts []string
			for _, allowed := range enum {
				opts = append(opts, fmt.Sprintf("%v", allowed))
			}
			issues = append(issues, fmt.Sprintf("parameter %q: value %v not in [%s]", name, value, strings.Join(opts, ", ")))
		}
	}

	if wantType == "array" {
		items, itemsOK := propSchema["items"].(map[string]interface{})
		arr, arrOK := value.([]interface{})
		if itemsOK && arrOK {
			for i, elem := range arr {
				issues = append(issues, checkValue(fmt.Sprintf("%s[%d]", name, i), elem, items)...)
			}
		}
	}

	return issues
}

func matchesType(value interface{}, wantType string) bool {
	switch wantType {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		return isNumber(value)
	case "integer":
		switch v := value.(type) {
		case float64:
			return v == float64(int64(v))
		case int, int32, int64:
			return true
		default:
			return false
		}
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	default:
		// Unknown type keyword: accept.
		return true
	}
}

func isNumber(value interface{}) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}

func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}
