package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"oaresponse/internal/domain"
)

// Outcome is the tagged result of decoding a model reply: exactly one of
// Parsed and Malformed is set.
type Outcome[T any] struct {
	Parsed    *T
	Malformed *domain.MalformedOutputError
}

// Unwrap returns the parsed value or the malformed-output error.
func (o Outcome[T]) Unwrap() (*T, error) {
	if o.Malformed != nil {
		return nil, o.Malformed
	}
	return o.Parsed, nil
}

// CompileSchema compiles a JSON Schema document once at startup.
func CompileSchema(name string, schema []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return compiled, nil
}

// Decode turns raw model output into T. The output must contain a JSON
// object; normalize (optional) repairs known type drift in place before the
// object is validated against schema and decoded.
func Decode[T any](stage, raw string, schema *jsonschema.Schema, normalize func(map[string]any)) Outcome[T] {
	malformed := func(reason error) Outcome[T] {
		return Outcome[T]{Malformed: &domain.MalformedOutputError{Stage: stage, Raw: raw, Reason: reason}}
	}

	body := ExtractJSONObject(raw)
	if body == "" {
		return malformed(errors.New("no JSON object in output"))
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return malformed(fmt.Errorf("invalid JSON: %w", err))
	}
	if doc == nil {
		return malformed(errors.New("output is null"))
	}

	if normalize != nil {
		normalize(doc)
	}

	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			return malformed(fmt.Errorf("json does not match schema: %w", err))
		}
	}

	// Round-trip through the normalized map so coerced values are what gets decoded
	normalized, err := json.Marshal(doc)
	if err != nil {
		return malformed(fmt.Errorf("re-encode: %w", err))
	}
	var out T
	if err := json.Unmarshal(normalized, &out); err != nil {
		return malformed(fmt.Errorf("decode: %w", err))
	}
	return Outcome[T]{Parsed: &out}
}

// ExtractJSONObject returns the outermost {...} span of s, dropping markdown
// code fences or prose a model may wrap around it. Returns "" if there is none.
func ExtractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// CoerceString converts scalars a model sometimes emits in place of strings.
// Objects and arrays are returned unchanged so schema validation rejects them.
func CoerceString(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return v
	}
}

// CoerceInt converts numeric strings like "12" or "12." to a number.
// Anything else is returned unchanged.
func CoerceInt(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	if n, err := strconv.Atoi(s); err == nil {
		return float64(n)
	}
	return v
}

// EnsureArray returns m[key] as a slice, replacing a missing or null value
// with an empty one.
func EnsureArray(m map[string]any, key string) []any {
	switch v := m[key].(type) {
	case []any:
		return v
	case nil:
		arr := []any{}
		m[key] = arr
		return arr
	default:
		return nil
	}
}

// EnsureStrings coerces the listed keys of m to strings, filling missing keys with "".
func EnsureStrings(m map[string]any, keys ...string) {
	for _, k := range keys {
		m[k] = CoerceString(m[k])
	}
}
