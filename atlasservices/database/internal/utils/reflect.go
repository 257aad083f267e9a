package utils

import (
	"errors"
	"reflect"
)

var ErrNotStruct = errors.New("value is not a struct")

// FieldIndexByColumn maps each tagged column of the struct type to its field index.
func FieldIndexByColumn(t reflect.Type) (map[string]int, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	lookup := map[string]int{}
	for i := range t.NumField() {
		fieldDefinition := t.Field(i)
		if !fieldDefinition.IsExported() {
			continue
		}

		tag := ParseTag(fieldDefinition.Tag)
		if tag.Column == "" {
			continue
		}

		lookup[tag.Column] = i
	}

	return lookup, nil
}
