package parse

// Unit is the fully parsed representation of a single DSL source file,
// prior to compilation, minus the FileIdentity and import resolution which
// live in pkg/fileident and pkg/importgraph.
type Unit struct {
	Header   Header
	Sections Sections
}

// Parse runs both parser passes over already-preprocessed source text.
func Parse(file, src string) (Unit, error) {
	sections, err := SplitSections(file, src)
	if err != nil {
		return Unit{}, err
	}
	header, err := ParseHeader(file, sections)
	if err != nil {
		return Unit{}, err
	}
	return Unit{Header: header, Sections: sections}, nil
}

// Body returns a section's body text, or the empty Body if it wasn't
// declared.
func (u Unit) Body(sec Section) Body {
	return u.Sections.Bodies[sec]
}

// HasSection reports whether a section was declared at all.
func (u Unit) HasSection(sec Section) bool {
	return u.Sections.Has(sec)
}
