// Package keyfill is a keyword-templating engine. It scans text for
// {{...}} spans, classifies each span against a typed keyword grammar, and
// substitutes values pulled from spreadsheets, JSON documents, user inputs
// and reusable text fragments. Range keywords expand into tables.
//
// Basic Usage:
//
//	wb, err := xlsx.Open("report.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer wb.Close()
//
//	engine := keyfill.New(
//	    keyfill.WithSpreadsheet(wb),
//	    keyfill.WithFileLoader(keyfill.OSFileLoader{Root: "fragments"}),
//	)
//
//	out, warnings, err := engine.Render("Total: {{XL!LAST!B}}", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range warnings {
//	    log.Println(w)
//	}
//	fmt.Println(out)
//
// Keyword Syntax:
//
// Spreadsheet: {{XL!CELL!B2}}, {{XL!LAST!Sheet2!B}}, {{XL!RANGE!A1:C4}},
// {{XL!COLUMN!Sheet1!"Name,Total"!2}}
//
// Aggregates: {{SUM!B2:B10}}, {{AVG!Sheet2!C2:C10}}
//
// Inputs: {{INPUT!text!Customer name}}, {{INPUT!select!Region!North,South}}
//
// JSON: {{JSON!invoice.json!$.lines[0].total}}, {{JSON!invoice.json!$.lines!SUM}}
//
// Fragments: {{TEMPLATE!intro.txt!section=Greeting}}, {{TEMPLATE!LIBRARY!footer}}
//
// A keyword that cannot be resolved stays in the output as literal text and
// is reported as a warning; only collaborator failures abort a run.
package keyfill

// Engine is the main entry point. Each render builds its own resolver, so
// an Engine carries no per-run state; concurrent renders are safe only if
// the attached collaborators are.
type Engine struct {
	config  *Config
	sheet   Spreadsheet
	loader  FileLoader
	library *Library
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithSpreadsheet attaches the workbook backing XL, SUM and AVG keywords.
func WithSpreadsheet(sheet Spreadsheet) Option {
	return func(e *Engine) {
		e.sheet = sheet
	}
}

// WithFileLoader attaches the loader backing JSON and TEMPLATE file
// keywords.
func WithFileLoader(loader FileLoader) Option {
	return func(e *Engine) {
		e.loader = loader
	}
}

// WithLibrary attaches the registry backing TEMPLATE!LIBRARY keywords.
func WithLibrary(library *Library) Option {
	return func(e *Engine) {
		e.library = library
	}
}

// New creates an engine with the given options. Without options it uses
// the global configuration and no collaborators, so only keywords with
// self-contained defaults resolve.
func New(opts ...Option) *Engine {
	engine := &Engine{
		config: GetGlobalConfig(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Render resolves every keyword in text. inputs maps input keys (see
// InputField.Key) to the values collected from the user; keys absent from
// the map fall back to the keyword's declared default. Warnings list the
// keywords left unresolved under the fail-open policy.
func (e *Engine) Render(text string, inputs InputValues) (string, []Warning, error) {
	r := newResolver(e.config, e.sheet, e.loader, e.library, inputs)
	out, err := r.ResolveText(text)
	if err != nil {
		return "", r.Warnings(), err
	}
	return out, r.Warnings(), nil
}

// RenderDocument resolves every keyword across doc's units in place,
// inserting styled tables where range keywords resolve.
func (e *Engine) RenderDocument(doc Document, inputs InputValues, style TableStyle) ([]Warning, error) {
	r := newResolver(e.config, e.sheet, e.loader, e.library, inputs)
	if err := r.RewriteDocument(doc, style); err != nil {
		return r.Warnings(), err
	}
	return r.Warnings(), nil
}

// ScanText lists the input fields declared in text, in order of first
// appearance, so callers can prompt before rendering.
func (e *Engine) ScanText(text string) []InputField {
	return ScanInputs(text, e.config.Separator)
}

// ScanDocument lists the input fields declared across doc's units.
func (e *Engine) ScanDocument(doc Document) []InputField {
	return ScanDocumentInputs(doc, e.config.Separator)
}
