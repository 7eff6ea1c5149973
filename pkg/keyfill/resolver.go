package keyfill

import (
	"strconv"
	"strings"
)

// Resolver owns one resolution run: the per-run JSON document cache, the
// pending-input registry, and the warnings collected under the fail-open
// policy. It is not safe for concurrent use; create one per run.
type Resolver struct {
	cfg       *Config
	sheet     Spreadsheet
	loader    FileLoader
	library   *Library
	inputs    InputValues
	jsonCache map[string]interface{}
	warnings  WarningList
	logger    *Logger
}

func newResolver(cfg *Config, sheet Spreadsheet, loader FileLoader, library *Library, inputs InputValues) *Resolver {
	if inputs == nil {
		inputs = InputValues{}
	}
	return &Resolver{
		cfg:       cfg,
		sheet:     sheet,
		loader:    loader,
		library:   library,
		inputs:    inputs,
		jsonCache: make(map[string]interface{}),
		logger:    GetLogger(),
	}
}

// Warnings returns the fail-open warnings recorded so far in this run.
func (r *Resolver) Warnings() []Warning {
	return r.warnings.Warnings()
}

// ResolveText runs one top-level resolution pass over plain text. Table
// results are rendered as aligned text tables. Unresolvable keywords stay
// as literal text and are recorded as warnings, unless strict mode is on.
func (r *Resolver) ResolveText(text string) (string, error) {
	ur, err := r.resolveSpans(text, 0, false)
	if err != nil {
		return "", err
	}
	return ur.text, nil
}

// unitResult is the outcome of resolving all spans in one text unit. When
// tables were extracted rather than inlined, text contains only the scalar
// substitutions.
type unitResult struct {
	text   string
	tables []*TableData
}

func (r *Resolver) resolveSpans(text string, depth int, extract bool) (unitResult, error) {
	tokens := Tokenize(text, r.cfg.Separator)
	if len(tokens) == 0 {
		return unitResult{text: text}, nil
	}

	var b strings.Builder
	var tables []*TableData
	last := 0
	for _, tok := range tokens {
		b.WriteString(text[last:tok.Start])
		last = tok.End

		res, err := r.resolveToken(tok, depth)
		if err != nil {
			if !isRecoverable(err) || r.cfg.StrictMode {
				return unitResult{}, err
			}
			r.warnings.Add(tok.Raw, err)
			r.logger.WithField("keyword", tok.Raw).Warn("keyword left unresolved: %v", err)
			b.WriteString(tok.Raw)
			continue
		}

		if res.Kind == TableResult {
			if extract {
				tables = append(tables, res.Table)
			} else {
				b.WriteString(res.Table.FormatText())
			}
		} else {
			b.WriteString(res.Text)
		}
	}
	b.WriteString(text[last:])
	return unitResult{text: b.String(), tables: tables}, nil
}

func (r *Resolver) resolveToken(tok Token, depth int) (Result, error) {
	if tok.Err != nil {
		return Result{}, tok.Err
	}
	return r.resolveKeyword(tok.Keyword, depth)
}

// resolveKeyword routes one classified keyword to its source. The kind
// switch is exhaustive; a kind can only come from the tokenizer.
func (r *Resolver) resolveKeyword(kw Keyword, depth int) (Result, error) {
	if r.logger.IsDebugMode() {
		r.logger.WithFields(Fields{"kind": kw.Kind, "fields": strings.Join(kw.Fields, ",")}).Debug("resolving keyword")
	}

	switch kw.Kind {
	case CellLookup:
		return r.resolveCell(kw.Fields)
	case LastValueLookup:
		return r.resolveLastValue(kw.Fields)
	case RangeLookup:
		return r.resolveRange(kw.Fields)
	case ColumnLookup:
		return r.resolveColumns(kw.Fields)
	case SumAggregate:
		return r.resolveAggregate(kw.Fields, false)
	case AvgAggregate:
		return r.resolveAggregate(kw.Fields, true)
	case UserInput:
		return r.resolveInput(kw.Fields)
	case JsonLookup:
		return r.resolveJSON(kw.Fields)
	case TemplateInclude:
		return r.include(kw.Fields, depth)
	default:
		return Result{}, NewMalformedKeywordError(strings.Join(kw.Fields, r.cfg.Separator), "unhandled keyword kind")
	}
}

// sheetAndRef splits the common [ref] / [sheet, ref] field shapes,
// substituting the workbook's first sheet when none is given.
func (r *Resolver) sheetAndRef(fields []string) (sheet, ref string, err error) {
	if len(fields) == 1 {
		sheet, err = r.resolveSheetName("")
		return sheet, fields[0], err
	}
	sheet, err = r.resolveSheetName(fields[0])
	return sheet, fields[1], err
}

// resolveSheetName maps a requested sheet name onto the workbook's actual
// sheet names, case-insensitively. An empty request means the first sheet.
func (r *Resolver) resolveSheetName(name string) (string, error) {
	if r.sheet == nil {
		return "", NewLookupError(name, "no spreadsheet attached")
	}
	names, err := r.sheet.SheetNames()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", NewLookupError(name, "workbook has no sheets")
	}
	if name == "" {
		return names[0], nil
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", NewLookupError(name, "sheet not found")
}

func (r *Resolver) resolveCell(fields []string) (Result, error) {
	sheet, ref, err := r.sheetAndRef(fields)
	if err != nil {
		return Result{}, err
	}
	value, err := r.sheet.ReadCell(sheet, ref)
	if err != nil {
		return Result{}, err
	}
	return scalarResult(value), nil
}

func (r *Resolver) resolveLastValue(fields []string) (Result, error) {
	if len(fields) == 3 {
		sheet, err := r.resolveSheetName(fields[0])
		if err != nil {
			return Result{}, err
		}
		value, err := r.sheet.ReadTitleLastValue(sheet, fields[1], fields[2])
		if err != nil {
			return Result{}, err
		}
		return scalarResult(value), nil
	}

	sheet, ref, err := r.sheetAndRef(fields)
	if err != nil {
		return Result{}, err
	}
	value, err := r.sheet.ReadLastValue(sheet, ref)
	if err != nil {
		return Result{}, err
	}
	return scalarResult(value), nil
}

func (r *Resolver) readRange(fields []string) (*TableData, error) {
	sheet, ref, err := r.sheetAndRef(fields)
	if err != nil {
		return nil, err
	}
	rows, err := r.sheet.ReadRange(sheet, ref)
	if err != nil {
		return nil, err
	}
	return &TableData{Rows: rows, HasHeader: true}, nil
}

// resolveRange always produces a table, even for a 1x1 range.
func (r *Resolver) resolveRange(fields []string) (Result, error) {
	table, err := r.readRange(fields)
	if err != nil {
		return Result{}, err
	}
	return tableResult(table), nil
}

func (r *Resolver) resolveAggregate(fields []string, mean bool) (Result, error) {
	table, err := r.readRange(fields)
	if err != nil {
		return Result{}, err
	}
	total, err := table.Reduce(mean)
	if err != nil {
		return Result{}, err
	}
	return scalarResult(FormatScalar(total)), nil
}

func (r *Resolver) resolveColumns(fields []string) (Result, error) {
	sheet, err := r.resolveSheetName(fields[0])
	if err != nil {
		return Result{}, err
	}

	refsField := strings.Trim(fields[1], `"`)
	refs := splitAndTrim(refsField, ",")
	if len(refs) == 0 {
		return Result{}, NewMalformedKeywordError(strings.Join(fields, r.cfg.Separator), "no column references given")
	}

	byTitle := false
	startRow := 1
	if len(fields) == 3 {
		// An explicit start row means the references are column titles.
		row, convErr := parsePositiveInt(fields[2])
		if convErr != nil {
			return Result{}, NewMalformedKeywordError(strings.Join(fields, r.cfg.Separator), "start row must be a positive integer")
		}
		byTitle = true
		startRow = row
	} else if !containsDigit(refsField) {
		// No digits anywhere: these cannot be cell references.
		byTitle = true
	}

	rows, err := r.sheet.ReadColumns(sheet, refs, byTitle, startRow)
	if err != nil {
		return Result{}, err
	}
	return tableResult(&TableData{Rows: rows, HasHeader: true}), nil
}

func (r *Resolver) resolveInput(fields []string) (Result, error) {
	field, err := parseInputField(fields, r.cfg.Separator)
	if err != nil {
		return Result{}, err
	}
	if value, ok := r.inputs[field.Key]; ok {
		return scalarResult(value), nil
	}
	value, err := field.DefaultValue()
	if err != nil {
		return Result{}, err
	}
	return scalarResult(value), nil
}

func (r *Resolver) resolveJSON(fields []string) (Result, error) {
	filename := fields[0]

	doc, err := r.loadJSON(filename)
	if err != nil {
		return Result{}, err
	}

	value, err := EvaluatePath(doc, fields[1])
	if err != nil {
		return Result{}, err
	}

	transform := strings.Join(fields[2:], r.cfg.Separator)
	value, err = ApplyTransform(value, transform)
	if err != nil {
		return Result{}, err
	}

	switch value.(type) {
	case []interface{}, map[string]interface{}:
		return Result{}, NewTypeMismatchError("JSON", value, "path resolves to a collection; apply SUM or JOIN")
	}
	return scalarResult(FormatScalar(value)), nil
}

// loadJSON parses a document at most once per run.
func (r *Resolver) loadJSON(filename string) (interface{}, error) {
	if doc, ok := r.jsonCache[filename]; ok {
		return doc, nil
	}
	if r.loader == nil {
		return nil, NewLookupError(filename, "no file loader attached")
	}
	doc, err := r.loader.LoadJSON(filename)
	if err != nil {
		return nil, err
	}
	r.jsonCache[filename] = doc
	return doc, nil
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsDigit(s string) bool {
	for _, c := range s {
		if c >= '0' && c <= '9' {
			return true
		}
	}
	return false
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, NewMalformedKeywordError(s, "must be positive")
	}
	return n, nil
}
