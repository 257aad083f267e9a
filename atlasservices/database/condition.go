package database

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/lunagic/atlas/atlasservices/database/internal/utils"
)

var comparators = []string{"=", "!=", "<", ">", "<=", ">=", "<>"}

func isComparator(operator string) bool {
	return slices.Contains(comparators, operator)
}

// Condition is one boolean expression for a WHERE clause.
type Condition interface {
	render(driver Driver, strict bool) (string, error)
}

// Equals renders "field = value" for every pair, AND-joined, in column order.
type Equals map[string]any

func (c Equals) render(driver Driver, strict bool) (string, error) {
	fields := make([]string, 0, len(c))
	for field := range c {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := []string{}
	for _, field := range fields {
		parts = append(parts, field+" = "+escape(driver, c[field]))
	}

	return strings.Join(parts, " AND "), nil
}

// Template substitutes each "?" in Text with the matching escaped value.
type Template struct {
	Text   string
	Values []any
}

func (c Template) render(driver Driver, strict bool) (string, error) {
	text, err := utils.Interpolate(c.Text, c.Values, func(value any) string {
		return escape(driver, value)
	})
	if err != nil {
		if errors.Is(err, utils.ErrPlaceholderCount) {
			return "", fmt.Errorf("%w: %q with %d values", ErrTemplateValues, c.Text, len(c.Values))
		}

		return "", err
	}

	return text, nil
}

// Comparison is the explicit "field operator value" triple.
//
// An Operator outside the recognized set is read as the value itself and the
// comparison becomes an equality, unless the service runs with strict comparators.
type Comparison struct {
	Field    string
	Operator string
	Value    any
}

func Compare(field string, operator string, value any) Comparison {
	return Comparison{
		Field:    field,
		Operator: operator,
		Value:    value,
	}
}

func (c Comparison) render(driver Driver, strict bool) (string, error) {
	if isComparator(c.Operator) {
		return c.Field + " " + c.Operator + " " + escape(driver, c.Value), nil
	}

	if strict {
		return "", fmt.Errorf("%w: %q", ErrInvalidComparator, c.Operator)
	}

	return c.Field + " = " + escape(driver, c.Operator), nil
}

// conditionFromArguments normalizes the loose where(field, comparator, value) call
// shapes into one of the condition variants.
func conditionFromArguments(field string, comparator any, value []any, strict bool) (Condition, error) {
	if values, ok := comparator.([]any); ok {
		return Template{Text: field, Values: values}, nil
	}

	operator, ok := comparator.(string)

	// A known operator without a value compares against NULL
	if len(value) == 0 {
		if ok && isComparator(operator) {
			return Compare(field, operator, nil), nil
		}

		return Equals{field: comparator}, nil
	}

	if ok {
		return Compare(field, operator, value[0]), nil
	}

	if strict {
		return nil, fmt.Errorf("%w: %v", ErrInvalidComparator, comparator)
	}

	return Equals{field: comparator}, nil
}
