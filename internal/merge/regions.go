// Package merge separates generated files into regions mug owns and
// content the user owns. A file is parsed into an ordered list of segments;
// generated regions are delimited by marker lines and may be rewritten,
// everything else is preserved byte for byte.
package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crolly/mug/internal/defs"
)

// ErrMalformedRegions indicates unbalanced, nested or duplicate markers.
var ErrMalformedRegions = errors.New("merge: malformed generated regions")

// SegmentKind tells literal text from a generated region.
type SegmentKind int

const (
	// Literal is user owned text.
	Literal SegmentKind = iota
	// Generated is a region delimited by begin/end markers.
	Generated
)

// Segment is one contiguous part of a document.
// For Generated segments Begin and End hold the marker lines (with their
// line endings) and Text holds the body between them.
type Segment struct {
	Kind  SegmentKind
	ID    string
	Begin string
	Text  string
	End   string
}

// Document is a parsed file.
type Document struct {
	Segments []Segment
}

// Parse splits content into segments. Content without markers yields a
// single literal segment.
func Parse(content []byte) (Document, error) {
	var (
		doc     Document
		literal strings.Builder
		body    strings.Builder
		open    *Segment
		seen    = map[string]bool{}
		lineNo  int
	)

	for _, line := range splitKeepEOL(string(content)) {
		lineNo++
		kind, id := markerOf(line)
		switch kind {
		case markerBegin:
			if open != nil {
				return Document{}, fmt.Errorf("%w: line %d: region %q opened inside %q", ErrMalformedRegions, lineNo, id, open.ID)
			}
			if id == "" {
				return Document{}, fmt.Errorf("%w: line %d: region without id", ErrMalformedRegions, lineNo)
			}
			if seen[id] {
				return Document{}, fmt.Errorf("%w: line %d: duplicate region %q", ErrMalformedRegions, lineNo, id)
			}
			seen[id] = true
			if literal.Len() > 0 {
				doc.Segments = append(doc.Segments, Segment{Kind: Literal, Text: literal.String()})
				literal.Reset()
			}
			open = &Segment{Kind: Generated, ID: id, Begin: line}
		case markerEnd:
			if open == nil || id != open.ID {
				return Document{}, fmt.Errorf("%w: line %d: unexpected end of region %q", ErrMalformedRegions, lineNo, id)
			}
			open.Text = body.String()
			open.End = line
			body.Reset()
			doc.Segments = append(doc.Segments, *open)
			open = nil
		default:
			if open != nil {
				body.WriteString(line)
			} else {
				literal.WriteString(line)
			}
		}
	}

	if open != nil {
		return Document{}, fmt.Errorf("%w: region %q is never closed", ErrMalformedRegions, open.ID)
	}
	if literal.Len() > 0 {
		doc.Segments = append(doc.Segments, Segment{Kind: Literal, Text: literal.String()})
	}
	return doc, nil
}

// String renders the document back into file content.
func (d Document) String() string {
	var sb strings.Builder
	for _, s := range d.Segments {
		if s.Kind == Generated {
			sb.WriteString(s.Begin)
			sb.WriteString(s.Text)
			sb.WriteString(s.End)
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Region returns the generated region with the given id.
func (d Document) Region(id string) (Segment, bool) {
	for _, s := range d.Segments {
		if s.Kind == Generated && s.ID == id {
			return s, true
		}
	}
	return Segment{}, false
}

// HasRegions reports whether the document declares any generated region.
func (d Document) HasRegions() bool {
	for _, s := range d.Segments {
		if s.Kind == Generated {
			return true
		}
	}
	return false
}

// Refresh returns a copy of d whose generated regions carry the bodies of
// the same regions in fresh. Regions missing from fresh keep their body,
// regions only present in fresh are not added. changed reports whether any
// body differs.
func (d Document) Refresh(fresh Document) (out Document, changed bool) {
	out.Segments = make([]Segment, len(d.Segments))
	copy(out.Segments, d.Segments)
	for i, s := range out.Segments {
		if s.Kind != Generated {
			continue
		}
		src, ok := fresh.Region(s.ID)
		if !ok || src.Text == s.Text {
			continue
		}
		out.Segments[i].Text = src.Text
		changed = true
	}
	return out, changed
}

// SameLiterals reports whether d and other agree on everything outside
// generated regions, and declare the same regions in the same order.
func (d Document) SameLiterals(other Document) bool {
	if len(d.Segments) != len(other.Segments) {
		return false
	}
	for i, s := range d.Segments {
		o := other.Segments[i]
		if s.Kind != o.Kind {
			return false
		}
		if s.Kind == Generated {
			if s.ID != o.ID {
				return false
			}
			continue
		}
		if s.Text != o.Text {
			return false
		}
	}
	return true
}

type markerKind int

const (
	markerNone markerKind = iota
	markerBegin
	markerEnd
)

// commentPrefixes may introduce a marker line.
var commentPrefixes = []string{"//", "#"}

// markerOf classifies a line. A marker is a comment line whose text starts
// with the marker token; the region id is the first word after it.
func markerOf(line string) (markerKind, string) {
	trimmed := strings.TrimSpace(line)
	var text string
	for _, p := range commentPrefixes {
		if rest, ok := strings.CutPrefix(trimmed, p); ok {
			text = strings.TrimSpace(rest)
			break
		}
	}
	for _, m := range []struct {
		token string
		kind  markerKind
	}{
		{defs.RegionBegin, markerBegin},
		{defs.RegionEnd, markerEnd},
	} {
		rest, ok := strings.CutPrefix(text, m.token)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		if f := strings.Fields(rest); len(f) > 0 {
			return m.kind, f[0]
		}
		return m.kind, ""
	}
	return markerNone, ""
}

// splitKeepEOL splits s into lines keeping their "\n" terminators so that
// joining the result reproduces s exactly.
func splitKeepEOL(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
