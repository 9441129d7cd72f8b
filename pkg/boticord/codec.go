package boticord

import (
	"fmt"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// schema is the payload shape of one API version. Every decoded field must be
// present and non-null unless its type is nullable or the field carries
// `<tag>:"optional"`.
type schema struct {
	tag string
}

var schemas = map[int]schema{
	1: {tag: "v1"},
	2: {tag: "v2"},
}

// SupportedVersions lists the API versions the client knows payload schemas for.
func SupportedVersions() []int { return []int{1, 2} }

type jsonUnmarshaler interface {
	UnmarshalJSON([]byte) error
}

var unmarshalerType = reflect.TypeOf((*jsonUnmarshaler)(nil)).Elem()

// decode checks that body carries every key the schema requires for out, then
// unmarshals it into out.
func (s schema) decode(body []byte, out any) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := s.check(reflect.TypeOf(out), raw, ""); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (s schema) check(t reflect.Type, raw any, path string) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if nullable(t) {
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected an object", pathOrRoot(path))
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := jsonName(f)
			if name == "" {
				continue
			}
			key := joinPath(path, name)
			val, present := obj[name]
			if !present || val == nil {
				if s.optional(f) {
					continue
				}
				return fmt.Errorf("missing required field %q", key)
			}
			if err := s.check(f.Type, val, key); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		items, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("%s: expected an array", pathOrRoot(path))
		}
		if t.Kind() == reflect.Array && len(items) != t.Len() {
			return fmt.Errorf("%s: expected %d items, got %d", pathOrRoot(path), t.Len(), len(items))
		}
		for i, item := range items {
			key := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				if nullable(t.Elem()) {
					continue
				}
				return fmt.Errorf("%s: null item", key)
			}
			if err := s.check(t.Elem(), item, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s schema) optional(f reflect.StructField) bool {
	return nullable(f.Type) || f.Tag.Get(s.tag) == "optional"
}

// nullable reports whether t decodes JSON null and absent keys into an invalid
// value of its own, as the null package types do.
func nullable(t reflect.Type) bool {
	return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(unmarshalerType)
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func pathOrRoot(path string) string {
	if path == "" {
		return "response"
	}
	return path
}
