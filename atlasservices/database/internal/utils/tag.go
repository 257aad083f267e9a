package utils

import (
	"reflect"
	"strings"
)

type DBTag struct {
	Column     string
	PrimaryKey bool
}

func ParseTag(tagString reflect.StructTag) DBTag {
	parts := strings.Split(tagString.Get("db"), ",")

	tag := DBTag{}

	for i, part := range parts {
		if i == 0 {
			if part != "-" {
				tag.Column = part
			}

			continue
		}

		if part == "primaryKey" {
			tag.PrimaryKey = true

			continue
		}
	}

	return tag
}

// Columns lists the tagged columns of a struct type in field order.
func Columns(t reflect.Type) []string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	columns := []string{}
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := ParseTag(field.Tag)
		if tag.Column == "" {
			continue
		}

		columns = append(columns, tag.Column)
	}

	return columns
}

// PrimaryKeyColumn returns the column tagged as primary key, falling back to "id".
func PrimaryKeyColumn(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	for i := range t.NumField() {
		tag := ParseTag(t.Field(i).Tag)
		if tag.PrimaryKey && tag.Column != "" {
			return tag.Column
		}
	}

	return "id"
}
