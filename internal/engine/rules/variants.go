package rules

import (
	"strings"

	"github.com/dscomply/dscomply/internal/config"
)

// Resolution describes how a literal style value maps onto the rule's
// closed variant vocabulary.
type Resolution int

const (
	// ResolutionNoStyle: the occurrence carries no style value at all.
	ResolutionNoStyle Resolution = iota
	// ResolutionUnique: the value maps to exactly one variant with
	// nothing left over.
	ResolutionUnique
	// ResolutionPartial: one variant matches but unmapped classes
	// remain and must be retained as a residual attribute.
	ResolutionPartial
	// ResolutionAmbiguous: more than one variant matches equally well.
	ResolutionAmbiguous
	// ResolutionUnmapped: a style value is present but no variant
	// covers it.
	ResolutionUnmapped
	// ResolutionDynamic: the style value is an expression and cannot be
	// inspected.
	ResolutionDynamic
)

func (r Resolution) String() string {
	switch r {
	case ResolutionNoStyle:
		return "no-style"
	case ResolutionUnique:
		return "unique"
	case ResolutionPartial:
		return "partial"
	case ResolutionAmbiguous:
		return "ambiguous"
	case ResolutionUnmapped:
		return "unmapped"
	case ResolutionDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// VariantTable is a rule's closed variant vocabulary, in declaration
// order for deterministic resolution.
type VariantTable struct {
	entries []variantEntry
}

type variantEntry struct {
	name        string
	classes     []string
	classSet    map[string]bool
	value       string
	replaceWith string
}

func newVariantTable(cfgs []config.Variant) VariantTable {
	table := VariantTable{entries: make([]variantEntry, 0, len(cfgs))}
	for i := range cfgs {
		entry := variantEntry{
			name:        cfgs[i].Name,
			classes:     append([]string(nil), cfgs[i].Classes...),
			classSet:    make(map[string]bool, len(cfgs[i].Classes)),
			value:       cfgs[i].Value,
			replaceWith: cfgs[i].ReplaceWith,
		}
		for _, class := range cfgs[i].Classes {
			entry.classSet[class] = true
		}
		table.entries = append(table.entries, entry)
	}
	return table
}

// Empty reports whether the table has no entries.
func (t VariantTable) Empty() bool {
	return len(t.entries) == 0
}

// ClassResolution is the outcome of mapping a literal class attribute
// onto the variant vocabulary.
type ClassResolution struct {
	Resolution Resolution
	Variant    string
	// Residual holds the classes no variant consumed, in source order.
	Residual []string
}

// ResolveClasses maps a literal class attribute value onto the table. A
// variant is a candidate when every one of its classes is present; the
// candidate consuming the most classes wins, and a coverage tie between
// different candidates is ambiguous.
func (t VariantTable) ResolveClasses(classAttr string) ClassResolution {
	classes := strings.Fields(classAttr)
	if len(classes) == 0 {
		return ClassResolution{Resolution: ResolutionNoStyle}
	}

	present := make(map[string]bool, len(classes))
	for _, class := range classes {
		present[class] = true
	}

	best := -1
	bestSize := 0
	tied := false
	for i := range t.entries {
		entry := &t.entries[i]
		if len(entry.classes) == 0 || !covers(present, entry.classSet) {
			continue
		}
		switch {
		case len(entry.classes) > bestSize:
			best, bestSize, tied = i, len(entry.classes), false
		case len(entry.classes) == bestSize:
			tied = true
		}
	}

	if best < 0 {
		return ClassResolution{Resolution: ResolutionUnmapped, Residual: classes}
	}
	if tied {
		return ClassResolution{Resolution: ResolutionAmbiguous, Residual: classes}
	}

	winner := &t.entries[best]
	var residual []string
	for _, class := range classes {
		if !winner.classSet[class] {
			residual = append(residual, class)
		}
	}

	resolution := ResolutionUnique
	if len(residual) > 0 {
		resolution = ResolutionPartial
	}
	return ClassResolution{Resolution: resolution, Variant: winner.name, Residual: residual}
}

// ResolveLiteral maps a matched literal value (e.g. a hex color) onto
// the table. Matching is exact and case-sensitive.
func (t VariantTable) ResolveLiteral(value string) (name, replaceWith string, res Resolution) {
	found := -1
	for i := range t.entries {
		if t.entries[i].value == value {
			if found >= 0 {
				return "", "", ResolutionAmbiguous
			}
			found = i
		}
	}
	if found < 0 {
		return "", "", ResolutionUnmapped
	}
	return t.entries[found].name, t.entries[found].replaceWith, ResolutionUnique
}

func covers(present, wanted map[string]bool) bool {
	for class := range wanted {
		if !present[class] {
			return false
		}
	}
	return true
}
