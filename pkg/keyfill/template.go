package keyfill

import (
	"fmt"
	"strings"
)

// includeSpec is the parsed form of a TEMPLATE keyword: where the fragment
// comes from and which slice of it to take.
type includeSpec struct {
	path      string // file path, empty for library includes
	library   string // library fragment name
	version   string
	section   string
	line      int
	paragraph int
	vars      map[string]string
}

func (s *includeSpec) target() string {
	if s.library != "" {
		return "LIBRARY:" + s.library
	}
	return s.path
}

// include resolves a TEMPLATE keyword: load the fragment, slice it, apply
// VARS substitution, then resolve the fragment's own keywords. A fragment
// that is exactly one keyword span passes its result through unchanged, so
// an included range keeps its table shape.
func (r *Resolver) include(fields []string, depth int) (Result, error) {
	spec, err := r.parseInclude(fields)
	if err != nil {
		return Result{}, err
	}

	if depth >= r.cfg.MaxIncludeDepth {
		return Result{}, NewRecursionLimitError(spec.target(), r.cfg.MaxIncludeDepth)
	}

	fragment, err := r.loadFragment(spec)
	if err != nil {
		return Result{}, err
	}

	fragment, err = sliceFragment(fragment, spec)
	if err != nil {
		return Result{}, err
	}

	fragment = applyVars(fragment, spec.vars)

	// Table passthrough: a fragment that is a single keyword and nothing
	// else resolves directly instead of being flattened to text.
	trimmed := strings.TrimSpace(fragment)
	tokens := Tokenize(trimmed, r.cfg.Separator)
	if len(tokens) == 1 && tokens[0].Start == 0 && tokens[0].End == len(trimmed) {
		return r.resolveToken(tokens[0], depth+1)
	}

	ur, err := r.resolveSpans(fragment, depth+1, false)
	if err != nil {
		return Result{}, err
	}
	return scalarResult(ur.text), nil
}

func (r *Resolver) loadFragment(spec *includeSpec) (string, error) {
	if spec.library != "" {
		if r.library == nil {
			return "", NewLookupError(spec.library, "no template library attached")
		}
		return r.library.Resolve(spec.library, spec.version)
	}
	if r.loader == nil {
		return "", NewLookupError(spec.path, "no file loader attached")
	}
	return r.loader.LoadText(spec.path)
}

// parseInclude splits TEMPLATE fields into target and modifiers. The
// modifier fields after the target may be section=, line=, paragraph= or
// VARS(...); a VARS value may contain the separator, so fields are rejoined
// until its parentheses balance.
func (r *Resolver) parseInclude(fields []string) (*includeSpec, error) {
	raw := strings.Join(fields, r.cfg.Separator)
	spec := &includeSpec{}

	rest := fields
	if strings.EqualFold(fields[0], "LIBRARY") {
		if len(fields) < 2 || fields[1] == "" {
			return nil, NewMalformedKeywordError(raw, "LIBRARY include needs a fragment name")
		}
		spec.library = fields[1]
		rest = fields[2:]
		if len(rest) > 0 && !isModifier(rest[0]) {
			spec.version = rest[0]
			rest = rest[1:]
		}
	} else {
		spec.path = fields[0]
		rest = fields[1:]
	}

	slices := 0
	for i := 0; i < len(rest); i++ {
		field := rest[i]
		switch {
		case strings.HasPrefix(field, "section="):
			spec.section = strings.TrimPrefix(field, "section=")
			slices++
		case strings.HasPrefix(field, "line="):
			n, err := parsePositiveInt(strings.TrimPrefix(field, "line="))
			if err != nil {
				return nil, NewMalformedKeywordError(raw, "line number must be a positive integer")
			}
			spec.line = n
			slices++
		case strings.HasPrefix(field, "paragraph="):
			n, err := parsePositiveInt(strings.TrimPrefix(field, "paragraph="))
			if err != nil {
				return nil, NewMalformedKeywordError(raw, "paragraph number must be a positive integer")
			}
			spec.paragraph = n
			slices++
		case strings.HasPrefix(field, "VARS("):
			body := field
			for !balancedParens(body) && i+1 < len(rest) {
				i++
				body += r.cfg.Separator + rest[i]
			}
			vars, err := parseVars(body)
			if err != nil {
				return nil, NewMalformedKeywordError(raw, err.Error())
			}
			spec.vars = vars
		default:
			return nil, NewMalformedKeywordError(raw, fmt.Sprintf("unknown include modifier %q", field))
		}
	}
	if slices > 1 {
		return nil, NewMalformedKeywordError(raw, "section, line and paragraph are mutually exclusive")
	}
	return spec, nil
}

func isModifier(field string) bool {
	return strings.HasPrefix(field, "section=") ||
		strings.HasPrefix(field, "line=") ||
		strings.HasPrefix(field, "paragraph=") ||
		strings.HasPrefix(field, "VARS(")
}

func balancedParens(s string) bool {
	depth := 0
	for _, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth <= 0
}

// parseVars parses "VARS(k=v,k2=v2)".
func parseVars(body string) (map[string]string, error) {
	if !strings.HasPrefix(body, "VARS(") || !strings.HasSuffix(body, ")") {
		return nil, fmt.Errorf("VARS modifier must be VARS(key=value,...)")
	}
	inner := body[len("VARS(") : len(body)-1]
	vars := make(map[string]string)
	for _, pair := range strings.Split(inner, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.Index(pair, "=")
		if eq <= 0 {
			return nil, fmt.Errorf("VARS entry %q is not key=value", pair)
		}
		vars[strings.TrimSpace(pair[:eq])] = pair[eq+1:]
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("VARS modifier has no entries")
	}
	return vars, nil
}

// applyVars replaces {key} placeholders in the fragment. Substitution is
// purely textual; the fragment then re-enters resolution, so a placeholder
// may complete a keyword span.
func applyVars(fragment string, vars map[string]string) string {
	for key, value := range vars {
		fragment = strings.ReplaceAll(fragment, "{"+key+"}", value)
	}
	return fragment
}

// sliceFragment applies the section, line or paragraph modifier.
func sliceFragment(fragment string, spec *includeSpec) (string, error) {
	switch {
	case spec.section != "":
		return sectionOf(fragment, spec.section, spec.target())
	case spec.line > 0:
		lines := strings.Split(fragment, "\n")
		if spec.line > len(lines) {
			return "", NewLookupError(spec.target(), fmt.Sprintf("line %d out of range (%d lines)", spec.line, len(lines)))
		}
		return lines[spec.line-1], nil
	case spec.paragraph > 0:
		paragraphs := splitParagraphs(fragment)
		if spec.paragraph > len(paragraphs) {
			return "", NewLookupError(spec.target(), fmt.Sprintf("paragraph %d out of range (%d paragraphs)", spec.paragraph, len(paragraphs)))
		}
		return paragraphs[spec.paragraph-1], nil
	}
	return fragment, nil
}

// sectionOf extracts text between "== name ==" markers. The section runs
// from its marker line to the next marker line or end of text.
func sectionOf(fragment, name, target string) (string, error) {
	lines := strings.Split(fragment, "\n")
	start := -1
	for i, line := range lines {
		marker, ok := sectionMarker(line)
		if !ok {
			continue
		}
		if start >= 0 {
			return strings.TrimSpace(strings.Join(lines[start:i], "\n")), nil
		}
		if strings.EqualFold(marker, name) {
			start = i + 1
		}
	}
	if start >= 0 {
		return strings.TrimSpace(strings.Join(lines[start:], "\n")), nil
	}
	return "", NewLookupError(target, fmt.Sprintf("section %q not found", name))
}

func sectionMarker(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "==") || !strings.HasSuffix(trimmed, "==") || len(trimmed) < 5 {
		return "", false
	}
	return strings.TrimSpace(trimmed[2 : len(trimmed)-2]), true
}

// splitParagraphs breaks text into blank-line-delimited blocks.
func splitParagraphs(text string) []string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paragraphs
}
