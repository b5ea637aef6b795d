package codec

import (
	"maps"
	"slices"
)

// Placeholder is one tag occurrence in an escaped string.
type Placeholder struct {
	Kind     TagKind
	Index    int
	Position int
}

// Placeholders lists every tag of the escaped string in order of appearance.
// It only scans; nesting is not checked.
func Placeholders(input string) ([]Placeholder, error) {
	scanner := newLexer(input)

	var placeholders []Placeholder

	for {
		tok, found, err := scanner.next()
		if err != nil {
			return nil, err
		}

		if !found {
			return placeholders, nil
		}

		placeholders = append(placeholders, Placeholder{Kind: tok.kind, Index: tok.index, Position: tok.start})
	}
}

// LayoutReport compares the components referenced by a source string and
// by its translation. Closing tags are not counted.
type LayoutReport struct {
	// Missing lists indices present in the source but not in the translation.
	Missing []int `json:"missing,omitempty" yaml:"missing,omitempty"`
	// Unknown lists indices present in the translation but not in the source.
	Unknown []int `json:"unknown,omitempty" yaml:"unknown,omitempty"`
	// Duplicated lists indices the translation opens more often than the source.
	Duplicated []int `json:"duplicated,omitempty" yaml:"duplicated,omitempty"`
	// Reshaped lists indices the translation writes with a tag shape the
	// source never uses for them, such as <cN>...</cN> for a <cN/>.
	Reshaped []int `json:"reshaped,omitempty" yaml:"reshaped,omitempty"`
}

// Clean reports whether the translation references exactly the source's
// components, each in the shape the source uses.
func (report LayoutReport) Clean() bool {
	return len(report.Missing) == 0 && len(report.Unknown) == 0 &&
		len(report.Duplicated) == 0 && len(report.Reshaped) == 0
}

// usage is how often an index is opened and which tag shapes open it.
type usage struct {
	count      int
	open       bool
	selfClosed bool
}

// reshapedFrom reports whether translated opens the index with a shape
// source does not.
func (translated usage) reshapedFrom(source usage) bool {
	return (translated.open && !source.open) || (translated.selfClosed && !source.selfClosed)
}

// CompareLayouts reports how the components referenced by translated differ
// from those in source. A clean report does not guarantee the translation
// parses; tag nesting is checked by ParseComponentString.
func CompareLayouts(source, translated string) (LayoutReport, error) {
	sourceUsage, err := componentUsage(source)
	if err != nil {
		return LayoutReport{}, err
	}

	translatedUsage, err := componentUsage(translated)
	if err != nil {
		return LayoutReport{}, err
	}

	var report LayoutReport

	for _, index := range slices.Sorted(maps.Keys(sourceUsage)) {
		if _, used := translatedUsage[index]; !used {
			report.Missing = append(report.Missing, index)
		}
	}

	for _, index := range slices.Sorted(maps.Keys(translatedUsage)) {
		expected, known := sourceUsage[index]
		if !known {
			report.Unknown = append(report.Unknown, index)

			continue
		}

		got := translatedUsage[index]

		if got.count > expected.count {
			report.Duplicated = append(report.Duplicated, index)
		}

		if got.reshapedFrom(expected) {
			report.Reshaped = append(report.Reshaped, index)
		}
	}

	return report, nil
}

func componentUsage(input string) (map[int]usage, error) {
	placeholders, err := Placeholders(input)
	if err != nil {
		return nil, err
	}

	usages := make(map[int]usage, len(placeholders))

	for _, placeholder := range placeholders {
		current := usages[placeholder.Index]

		switch placeholder.Kind {
		case TagOpen:
			current.open = true
		case TagSelfClosing:
			current.selfClosed = true
		default:
			continue
		}

		current.count++
		usages[placeholder.Index] = current
	}

	return usages, nil
}
