package tools

import (
	"strings"
	"testing"
)

func objectSchema(props map[string]interface{}, required ...interface{}) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func TestValidateParams_NilSchemaAcceptsAnything(t *testing.T) {
	got, issues := ValidateParams(nil, map[string]interface{}{"anything": 1})
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if got["anything"] != 1 {
		t.Error("params should pass through")
	}
}

func TestValidateParams_NilParamsBecomeEmptyMap(t *testing.T) {
	got, issues := ValidateParams(objectSchema(map[string]interface{}{}), nil)
	if got == nil {
		t.Fatal("expected non-nil map")
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestValidateParams_Required(t *testing.T) {
	schema := objectSchema(map[string]interface{}{
		"text": map[string]interface{}{"type": "string"},
	}, "text")

	_, issues := ValidateParams(schema, map[string]interface{}{})
	if len(issues) != 1 || !strings.Contains(issues[0], `"text"`) {
		t.Fatalf("expected missing-required issue, got %v", issues)
	}
}

func TestValidateParams_TypeMismatch(t *testing.T) {
	schema := objectSchema(map[string]interface{}{
		"count": map[string]interface{}{"type": "integer"},
		"name":  map[string]interface{}{"type": "string"},
	})

	_, issues := ValidateParams(schema, map[string]interface{}{
		"count": "three",
		"name":  42.0,
	})
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
}

func TestValidateParams_IntegerAcceptsWholeFloat(t *testing.T) {
	// JSON numbers decode as float64; 3.0 is a valid integer, 3.5 is not.
	schema := objectSchema(map[string]interface{}{
		"n": map[string]interface{}{"type": "integer"},
	})
	if _, issues := ValidateParams(schema, map[string]interface{}{"n": 3.0}); len(issues) != 0 {
		t.Errorf("3.0 should validate as integer: %v", issues)
	}
	if _, issues := ValidateParams(schema, map[string]interface{}{"n": 3.5}); len(issues) == 0 {
		t.Error("3.5 should fail integer validation")
	}
}

func TestValidateParams_Enum(t *testing.T) {
	schema := objectSchema(map[string]interface{}{
		"mode": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"fast", "slow"},
		},
	})
	if _, issues := ValidateParams(schema, map[string]interface{}{"mode": "fast"}); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
	if _, issues := ValidateParams(schema, map[string]interface{}{"mode": "medium"}); len(issues) == 0 {
		t.Error("expected enum violation")
	}
}

func TestValidateParams_AdditionalPropertiesFalse(t *testing.T) {
	schema := objectSchema(map[string]interface{}{
		"text": map[string]interface{}{"type": "string"},
	})
	schema["additionalProperties"] = false

	_, issues := ValidateParams(schema, map[string]interface{}{
		"text":  "hi",
		"extra": true,
	})
	if len(issues) != 1 || !strings.Contains(issues[0], `"extra"`) {
		t.Fatalf("expected unknown-parameter issue, got %v", issues)
	}
}

func TestValidateParams_ArrayItems(t *testing.T) {
	schema := objectSchema(map[string]interface{}{
		"tags": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	})
	_, issues := ValidateParams(schema, map[string]interface{}{
		"tags": []interface{}{"a", 2.0, "c"},
	})
	if len(issues) != 1 || !strings.Contains(issues[0], "tags[1]") {
		t.Fatalf("expected item type issue, got %v", issues)
	}
}
