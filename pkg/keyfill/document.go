package keyfill

// Unit is one rewritable text block in a host document: a paragraph, a
// table cell, anything with text that can be replaced in place. Tables
// produced by a keyword in the unit are inserted after it.
type Unit interface {
	Text() string
	SetText(text string)
	InsertTable(table *TableData, style TableStyle) error
}

// Document exposes a host document's text units in reading order:
// paragraph-like blocks first, then table cells top-to-bottom and
// left-to-right.
type Document interface {
	Units() []Unit
}

// TableStyle carries rendering hints for inserted tables. Fills are RGB
// hex without a leading hash.
type TableStyle struct {
	HeaderBold bool
	HeaderFill string
	AltRowFill string
}

// DefaultTableStyle matches the generated-report look: bold grey header,
// light banding on alternate rows.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		HeaderBold: true,
		HeaderFill: "D9D9D9",
		AltRowFill: "F5F5F5",
	}
}

// RewriteDocument resolves every keyword in every unit of doc. Scalar
// results substitute in place; table results are inserted after their unit
// with the given style. Unresolvable keywords stay as literal text and come
// back as warnings, unless strict mode aborts the run.
func (r *Resolver) RewriteDocument(doc Document, style TableStyle) error {
	for _, unit := range doc.Units() {
		text := unit.Text()
		if !ContainsKeyword(text) {
			continue
		}
		ur, err := r.resolveSpans(text, 0, true)
		if err != nil {
			return err
		}
		if ur.text != text {
			unit.SetText(ur.text)
		}
		for _, table := range ur.tables {
			if err := unit.InsertTable(table, style); err != nil {
				return NewCollaboratorError("insert table", "", err)
			}
		}
	}
	return nil
}

// ScanDocumentInputs collects every user-input keyword across doc, in
// reading order, without resolving anything. Callers prompt for values
// first and resolve with the populated registry afterwards.
func ScanDocumentInputs(doc Document, sep string) []InputField {
	var fields []InputField
	seen := make(map[string]bool)
	for _, unit := range doc.Units() {
		for _, field := range ScanInputs(unit.Text(), sep) {
			if seen[field.Key] {
				continue
			}
			seen[field.Key] = true
			fields = append(fields, field)
		}
	}
	return fields
}
