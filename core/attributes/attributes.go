package attributes

import (
	"fmt"
	"strings"
)

// Directive names recognized by the sync pipeline. Names are case-sensitive.
const (
	DirectiveCluster   = "OpsviewCollectorCluster"
	DirectiveHashtags  = "OpsviewHashtags"
	DirectiveTemplates = "OpsviewHostTemplates"
)

// Directive is one Name=Value clause from a CI attributes field.
type Directive struct {
	// Name is the directive name, e.g. "OpsviewCollectorCluster".
	Name string

	// Value is the raw value text after the first '=', trimmed.
	Value string

	// Values holds the split list elements for list-valued directives
	// (OpsviewHashtags, OpsviewHostTemplates). Nil for single-valued
	// and unrecognized directives.
	Values []string
}

// Warning describes a directive that could not be parsed.
// Warnings are non-fatal: the rest of the directive set stays usable.
type Warning struct {
	// Directive is the directive name, or the raw clause when no name
	// could be determined.
	Directive string

	// Reason explains why the directive was rejected.
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("directive %q: %s", w.Directive, w.Reason)
}

// Set is an ordered collection of parsed directives, at most one per name.
type Set struct {
	directives []Directive
	byName     map[string]int
}

// Get returns the directive with the given name.
func (s Set) Get(name string) (Directive, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return Directive{}, false
	}
	return s.directives[idx], true
}

// Has reports whether a directive with the given name was parsed.
func (s Set) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Directives returns the directives in the order they appeared.
func (s Set) Directives() []Directive {
	out := make([]Directive, len(s.directives))
	copy(out, s.directives)
	return out
}

// Len returns the number of parsed directives.
func (s Set) Len() int {
	return len(s.directives)
}

func (s *Set) add(d Directive) bool {
	if s.byName == nil {
		s.byName = make(map[string]int)
	}
	if _, exists := s.byName[d.Name]; exists {
		return false
	}
	s.byName[d.Name] = len(s.directives)
	s.directives = append(s.directives, d)
	return true
}

// isList reports whether a directive name takes a comma-separated list value.
func isList(name string) bool {
	return name == DirectiveHashtags || name == DirectiveTemplates
}

// Parse scans a raw attributes string into a directive set.
//
// The grammar is Directive(;Directive)* with Directive := Name=Value.
// List values split on ',' into elements that are either bare tokens or
// double-quoted strings; quotes are stripped and may enclose ',' and ';'.
// No escape sequences exist inside quotes.
//
// Parsing is tolerant: a malformed directive produces a warning and is
// dropped, while every other directive in the same string still parses.
// Unrecognized directive names are kept as opaque pass-through entries.
func Parse(raw string) (Set, []Warning) {
	var (
		set      Set
		warnings []Warning
	)

	for _, clause := range splitOutsideQuotes(raw, ';') {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		name, value, found := strings.Cut(clause, "=")
		if !found {
			warnings = append(warnings, Warning{Directive: clip(clause), Reason: "missing '='"})
			continue
		}

		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" {
			warnings = append(warnings, Warning{Directive: clip(clause), Reason: "empty directive name"})
			continue
		}

		d := Directive{Name: name, Value: value}
		if isList(name) {
			values, err := splitList(value)
			if err != nil {
				warnings = append(warnings, Warning{Directive: name, Reason: err.Error()})
				continue
			}
			d.Values = values
		}

		if !set.add(d) {
			warnings = append(warnings, Warning{Directive: name, Reason: "duplicate directive, first value kept"})
		}
	}

	return set, warnings
}

// splitOutsideQuotes splits s on sep, ignoring separators inside double
// quotes. Quotes are preserved in the returned segments.
func splitOutsideQuotes(s string, sep rune) []string {
	var (
		segments []string
		start    int
		inQuote  bool
	)

	for i, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == sep && !inQuote:
			segments = append(segments, s[start:i])
			start = i + len(string(sep))
		}
	}
	segments = append(segments, s[start:])
	return segments
}

// splitList splits a list value into its elements. Elements are bare
// tokens (which may not contain '"') or double-quoted strings. Empty
// elements are dropped.
func splitList(value string) ([]string, error) {
	var out []string

	i := 0
	for i < len(value) {
		// Skip whitespace before the element.
		for i < len(value) && (value[i] == ' ' || value[i] == '\t') {
			i++
		}
		if i >= len(value) {
			break
		}

		var element string
		if value[i] == '"' {
			end := strings.IndexByte(value[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote")
			}
			element = value[i+1 : i+1+end]
			i += end + 2

			// Only whitespace may follow a closing quote before the
			// next separator.
			for i < len(value) && (value[i] == ' ' || value[i] == '\t') {
				i++
			}
			if i < len(value) && value[i] != ',' {
				return nil, fmt.Errorf("unexpected %q after quoted element", value[i])
			}
		} else {
			end := strings.IndexByte(value[i:], ',')
			if end < 0 {
				end = len(value) - i
			}
			token := strings.TrimSpace(value[i : i+end])
			if strings.ContainsRune(token, '"') {
				return nil, fmt.Errorf("unexpected '\"' inside element %q", clip(token))
			}
			element = token
			i += end
		}

		if element != "" {
			out = append(out, element)
		}
		if i < len(value) && value[i] == ',' {
			i++
		}
	}

	return out, nil
}

// clip bounds a string for use in warning messages.
func clip(s string) string {
	const max = 40
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
