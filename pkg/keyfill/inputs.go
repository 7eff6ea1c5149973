package keyfill

import (
	"strings"
	"time"
)

// InputType names the interactive control an INPUT keyword requests.
type InputType string

const (
	InputText   InputType = "text"
	InputArea   InputType = "area"
	InputDate   InputType = "date"
	InputSelect InputType = "select"
	InputCheck  InputType = "check"
)

// InputField describes one INPUT keyword for the form collaborator: what
// control to render, its label, and the declared default. Key is the
// stable registry key the collaborator must use when it hands values back.
type InputField struct {
	Type    InputType
	Label   string
	Default string
	Options []string // select only
	Format  string   // date only, e.g. "YYYY/MM/DD"
	Key     string
}

// InputValues maps InputField keys to user-supplied values. The registry
// is populated by the form collaborator before resolution and is read-only
// during the pass.
type InputValues map[string]string

// inputKey derives the stable registry key for an INPUT keyword from its
// full field list, so two identical keywords share one form entry and two
// differing ones never collide.
func inputKey(fields []string, sep string) string {
	return "INPUT" + sep + strings.Join(fields, sep)
}

// parseInputField interprets the fields of a UserInput keyword:
// subtype, label, then per-subtype extras (default value, options, date
// format).
func parseInputField(fields []string, sep string) (InputField, error) {
	subtype := InputType(strings.ToLower(fields[0]))
	field := InputField{
		Type: subtype,
		Key:  inputKey(fields, sep),
	}
	if len(fields) > 1 {
		field.Label = fields[1]
	}

	switch subtype {
	case InputText, InputArea:
		if len(fields) > 2 {
			field.Default = fields[2]
		}
	case InputCheck:
		field.Default = "false"
		if len(fields) > 2 {
			field.Default = strings.ToLower(fields[2])
		}
	case InputDate:
		field.Default = "today"
		field.Format = "YYYY/MM/DD"
		if len(fields) > 2 && fields[2] != "" {
			field.Default = fields[2]
		}
		if len(fields) > 3 && fields[3] != "" {
			field.Format = fields[3]
		}
	case InputSelect:
		if len(fields) > 2 {
			for _, opt := range strings.Split(fields[2], ",") {
				if trimmed := strings.TrimSpace(opt); trimmed != "" {
					field.Options = append(field.Options, trimmed)
				}
			}
		}
	default:
		return InputField{}, NewMalformedKeywordError(strings.Join(fields, sep), "unknown input subtype '"+fields[0]+"'")
	}
	return field, nil
}

// DefaultValue computes the substitution used when the registry holds no
// entry for the field: the declared default for text, area and check, a
// formatted date (resolving "today") for date, and the first option for
// select. A select with no options has no usable default.
func (f InputField) DefaultValue() (string, error) {
	switch f.Type {
	case InputText, InputArea:
		return f.Default, nil
	case InputCheck:
		if parseBool(f.Default) {
			return "true", nil
		}
		return "false", nil
	case InputSelect:
		if len(f.Options) == 0 {
			return "", NewMissingInputError(f.Label, f.Key)
		}
		return f.Options[0], nil
	case InputDate:
		return formatDateDefault(f.Default, f.Format), nil
	default:
		return "", NewMissingInputError(f.Label, f.Key)
	}
}

var dateLayouts = map[string]string{
	"YYYY/MM/DD": "2006/01/02",
	"DD/MM/YYYY": "02/01/2006",
	"MM/DD/YYYY": "01/02/2006",
	"YYYY-MM-DD": "2006-01-02",
}

func dateLayout(format string) string {
	if layout, ok := dateLayouts[format]; ok {
		return layout
	}
	return "2006/01/02"
}

// formatDateDefault renders the declared date default in the requested
// format. "today" means the current date; an unparseable default also
// falls back to today rather than failing the keyword.
func formatDateDefault(def, format string) string {
	layout := dateLayout(format)
	if strings.EqualFold(def, "today") {
		return time.Now().Format(layout)
	}
	if t, err := time.Parse(layout, def); err == nil {
		return t.Format(layout)
	}
	return time.Now().Format(layout)
}

// ScanInputs finds every well-formed INPUT keyword in text, in document
// order, for the form collaborator to present before a resolution pass.
func ScanInputs(text, sep string) []InputField {
	var fields []InputField
	for _, tok := range Tokenize(text, sep) {
		if tok.Err != nil || tok.Keyword.Kind != UserInput {
			continue
		}
		field, err := parseInputField(tok.Keyword.Fields, sep)
		if err != nil {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}
