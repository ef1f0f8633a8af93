package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
)

const (
	maxResultElements = 20
	maxResultChars    = 2000
)

// SummarizeResult renders a tool result for the transcript. Large
// payloads are cut down so a single verbose tool cannot blow the
// context window: arrays keep their first 20 elements, strings their
// first 2000 characters, and each cut is marked explicitly so the model
// knows it is looking at a truncated view.
func SummarizeResult(result interface{}) string {
	if s, ok := result.(string); ok {
		if len(s) > maxResultChars {
			return fmt.Sprintf("%q [truncated: string length %d exceeds %d characters]",
				s[:maxResultChars], len(s), maxResultChars)
		}
		return marshalOr(s)
	}

	rv := reflect.ValueOf(result)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		if n := rv.Len(); n > maxResultElements {
			head := make([]interface{}, maxResultElements)
			for i := 0; i < maxResultElements; i++ {
				head[i] = rv.Index(i).Interface()
			}
			return fmt.Sprintf("%s [truncated: showing first %d of %d items]",
				marshalOr(head), maxResultElements, n)
		}
	}

	out := marshalOr(result)
	if len(out) > maxResultChars {
		return fmt.Sprintf("%s [truncated: serialized length %d exceeds %d characters]",
			out[:maxResultChars], len(out), maxResultChars)
	}
	return out
}

func marshalOr(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
