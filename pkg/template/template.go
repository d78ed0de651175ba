// Package template renders prompt templates. A template refers to variables as {name};
// literal braces are written doubled, {{ and }}.
package template

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingVariable = errors.New("missing template variable")
	ErrMalformed       = errors.New("malformed template")
)

// Render substitutes every {name} in tmpl with vars[name].
func Render(tmpl string, vars map[string]string) (string, error) {
	var buf strings.Builder

	err := walk(tmpl, func(literal string) {
		buf.WriteString(literal)
	}, func(name string) error {
		value, ok := vars[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingVariable, name)
		}

		buf.WriteString(value)

		return nil
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Variables returns the distinct variable names used by tmpl in order of appearance.
func Variables(tmpl string) ([]string, error) {
	var names []string

	seen := map[string]bool{}

	err := walk(tmpl, func(string) {}, func(name string) error {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

func walk(tmpl string, literal func(string), variable func(string) error) error {
	for i := 0; i < len(tmpl); {
		switch c := tmpl[i]; {
		case strings.HasPrefix(tmpl[i:], "{{"):
			literal("{")
			i += 2
		case strings.HasPrefix(tmpl[i:], "}}"):
			literal("}")
			i += 2
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return fmt.Errorf("%w: unclosed '{' at offset %d", ErrMalformed, i)
			}

			name := strings.TrimSpace(tmpl[i+1 : i+1+end])
			if name == "" || strings.ContainsRune(name, '{') {
				return fmt.Errorf("%w: invalid variable at offset %d", ErrMalformed, i)
			}

			if err := variable(name); err != nil {
				return err
			}

			i += end + 2
		case c == '}':
			return fmt.Errorf("%w: single '}' at offset %d", ErrMalformed, i)
		default:
			next := strings.IndexAny(tmpl[i:], "{}")
			if next < 0 {
				next = len(tmpl) - i
			}

			literal(tmpl[i : i+next])
			i += next
		}
	}

	return nil
}
