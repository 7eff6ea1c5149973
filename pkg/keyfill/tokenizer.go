package keyfill

import (
	"regexp"
	"strings"
)

// KeywordKind identifies the resolution strategy for one keyword. The set
// is closed: a family string outside the grammar never produces a kind, it
// produces a MalformedKeywordError at tokenization time.
type KeywordKind int

const (
	CellLookup KeywordKind = iota
	LastValueLookup
	RangeLookup
	ColumnLookup
	UserInput
	TemplateInclude
	JsonLookup
	SumAggregate
	AvgAggregate
)

func (k KeywordKind) String() string {
	switch k {
	case CellLookup:
		return "CellLookup"
	case LastValueLookup:
		return "LastValueLookup"
	case RangeLookup:
		return "RangeLookup"
	case ColumnLookup:
		return "ColumnLookup"
	case UserInput:
		return "UserInput"
	case TemplateInclude:
		return "TemplateInclude"
	case JsonLookup:
		return "JsonLookup"
	case SumAggregate:
		return "SumAggregate"
	case AvgAggregate:
		return "AvgAggregate"
	default:
		return "Unknown"
	}
}

// Keyword is one classified {{...}} span body: a kind plus the ordered
// fields after the family (and, for XL, after the subcommand). Fields is
// never empty for a classified keyword.
type Keyword struct {
	Kind   KeywordKind
	Fields []string
}

// Token is one {{...}} span found in input text. Start and End address the
// full span including braces. A span whose body does not parse carries the
// classification error in Err; its Raw text survives resolution unchanged.
type Token struct {
	Start   int
	End     int
	Raw     string
	Keyword Keyword
	Err     error
}

// The scan is non-greedy: the first }} closes a span regardless of any
// inner braces. Nested {{ inside a span body is not balanced.
var spanRegex = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)

// Tokenize finds every {{...}} span in input, left to right and
// non-overlapping, and classifies each body against the keyword grammar
// using sep as the field separator.
func Tokenize(input, sep string) []Token {
	logger := GetLogger()
	if logger.IsDebugMode() {
		logger.WithField("input_length", len(input)).Debug("scanning for keywords")
	}

	var tokens []Token
	for _, match := range spanRegex.FindAllStringSubmatchIndex(input, -1) {
		raw := input[match[0]:match[1]]
		body := input[match[2]:match[3]]

		tok := Token{Start: match[0], End: match[1], Raw: raw}
		kw, err := ParseKeyword(body, sep)
		if err != nil {
			tok.Err = err
		} else {
			tok.Keyword = kw
		}
		if logger.IsDebugMode() {
			logger.WithFields(Fields{"kind": tok.Keyword.Kind, "raw": raw}).Debug("found keyword")
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ContainsKeyword reports whether text contains at least one {{...}} span.
func ContainsKeyword(text string) bool {
	return spanRegex.MatchString(text)
}

// ParseKeyword classifies one span body. The first field names the family
// (case-sensitive: XL, INPUT, TEMPLATE, JSON, SUM, AVG); XL carries a
// subcommand in the second field.
func ParseKeyword(body, sep string) (Keyword, error) {
	fields := strings.Split(body, sep)
	family := strings.TrimSpace(fields[0])

	switch family {
	case "XL":
		return parseExcelKeyword(body, fields[1:])
	case "INPUT":
		if len(fields) < 3 {
			return Keyword{}, NewMalformedKeywordError(body, "INPUT requires a subtype and a label")
		}
		return Keyword{Kind: UserInput, Fields: trimFields(fields[1:])}, nil
	case "TEMPLATE":
		if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
			return Keyword{}, NewMalformedKeywordError(body, "TEMPLATE requires a target")
		}
		return Keyword{Kind: TemplateInclude, Fields: trimFields(fields[1:])}, nil
	case "JSON":
		if len(fields) < 3 {
			return Keyword{}, NewMalformedKeywordError(body, "JSON requires a filename and a path")
		}
		return Keyword{Kind: JsonLookup, Fields: trimFields(fields[1:])}, nil
	case "SUM":
		if len(fields) < 2 || len(fields) > 3 {
			return Keyword{}, NewMalformedKeywordError(body, "SUM takes an optional sheet and a range")
		}
		return Keyword{Kind: SumAggregate, Fields: trimFields(fields[1:])}, nil
	case "AVG":
		if len(fields) < 2 || len(fields) > 3 {
			return Keyword{}, NewMalformedKeywordError(body, "AVG takes an optional sheet and a range")
		}
		return Keyword{Kind: AvgAggregate, Fields: trimFields(fields[1:])}, nil
	default:
		return Keyword{}, NewMalformedKeywordError(body, "unknown keyword family '"+family+"'")
	}
}

func parseExcelKeyword(body string, fields []string) (Keyword, error) {
	if len(fields) < 2 {
		return Keyword{}, NewMalformedKeywordError(body, "XL requires a subcommand and a reference")
	}
	sub := strings.TrimSpace(fields[0])
	rest := trimFields(fields[1:])

	switch sub {
	case "CELL":
		if len(rest) > 2 {
			return Keyword{}, NewMalformedKeywordError(body, "XL CELL takes an optional sheet and a reference")
		}
		return Keyword{Kind: CellLookup, Fields: rest}, nil
	case "LAST":
		if len(rest) > 3 {
			return Keyword{}, NewMalformedKeywordError(body, "XL LAST takes an optional sheet, a reference, and an optional title")
		}
		return Keyword{Kind: LastValueLookup, Fields: rest}, nil
	case "RANGE":
		if len(rest) > 2 {
			return Keyword{}, NewMalformedKeywordError(body, "XL RANGE takes an optional sheet and a range")
		}
		return Keyword{Kind: RangeLookup, Fields: rest}, nil
	case "COLUMN":
		if len(rest) > 3 {
			return Keyword{}, NewMalformedKeywordError(body, "XL COLUMN takes a sheet, column references or titles, and an optional start row")
		}
		if len(rest) < 2 {
			return Keyword{}, NewMalformedKeywordError(body, "XL COLUMN requires a sheet and column references")
		}
		return Keyword{Kind: ColumnLookup, Fields: rest}, nil
	default:
		return Keyword{}, NewMalformedKeywordError(body, "unknown XL subcommand '"+sub+"'")
	}
}

func trimFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
