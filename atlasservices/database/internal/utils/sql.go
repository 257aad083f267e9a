package utils

import (
	"errors"
	"strings"
	"unicode"
)

var ErrPlaceholderCount = errors.New("placeholder count does not match value count")

// Escaping tells how a backslash behaves inside a single-quoted literal.
type Escaping int

const (
	// EscapingNone only knows doubled quotes, a backslash is plain text.
	EscapingNone Escaping = iota
	// EscapingBackslash lets a backslash escape the next rune in every literal.
	EscapingBackslash
	// EscapingPrefixed lets a backslash escape the next rune in E'' literals only.
	EscapingPrefixed
)

// Normalize trims the statement and collapses runs of whitespace into a single
// space. Text inside single-quoted literals is left untouched, escaping decides
// where those literals end.
func Normalize(statement string, escaping Escaping) string {
	statement = strings.TrimSpace(statement)

	builder := strings.Builder{}
	builder.Grow(len(statement))

	inLiteral := false
	backslashes := false
	escaped := false
	closed := false
	pending := []rune{}
	previous := []rune{0, 0}

	write := func(r rune) {
		builder.WriteRune(r)
		previous[0], previous[1] = previous[1], r
	}

	for _, r := range statement {
		if inLiteral {
			write(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\' && backslashes:
				escaped = true
			case r == '\'':
				inLiteral = false
				closed = true
			}
			continue
		}

		if isSpace(r) {
			pending = append(pending, r)
			closed = false
			continue
		}

		// A lone whitespace rune is kept as is, a run becomes one space
		switch len(pending) {
		case 0:
		case 1:
			write(pending[0])
		default:
			write(' ')
		}
		pending = pending[:0]

		if r == '\'' {
			// A doubled quote reopens the literal it just closed
			if !closed {
				backslashes = opensEscapedLiteral(escaping, previous)
			}
			inLiteral = true
		}
		closed = false
		write(r)
	}

	return builder.String()
}

// opensEscapedLiteral reports whether a quote following previous starts a
// literal in which backslashes escape.
func opensEscapedLiteral(escaping Escaping, previous []rune) bool {
	switch escaping {
	case EscapingBackslash:
		return true
	case EscapingPrefixed:
		return (previous[1] == 'E' || previous[1] == 'e') && !isWordRune(previous[0])
	}

	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

// Interpolate splits the template on "?" and substitutes the rendered values in order.
func Interpolate(template string, values []any, render func(value any) string) (string, error) {
	parts := strings.Split(template, "?")
	if len(parts)-1 != len(values) {
		return "", ErrPlaceholderCount
	}

	builder := strings.Builder{}
	for i, part := range parts {
		builder.WriteString(part)
		if i < len(values) {
			builder.WriteString(render(values[i]))
		}
	}

	return builder.String(), nil
}

// HasPrefixFold reports whether the statement starts with any of the verbs, ignoring case.
func HasPrefixFold(statement string, verbs ...string) bool {
	for _, verb := range verbs {
		if len(statement) < len(verb) {
			continue
		}

		if strings.EqualFold(statement[:len(verb)], verb) {
			return true
		}
	}

	return false
}
