// Package segment classifies the directory names that make up a route file path.
//
// A segment is one slash-delimited component of a path below the routes folder:
//
//	about        → static, "about"
//	[id]         → dynamic, ":id"
//	[id$]        → optional, ":id?"
//	[...slug]    → catch-all, ":slug*"
//
// Brackets with nothing left inside after the markers are stripped use the
// parameter name "slug".
package segment

import "strings"

// DefaultParamName is used when a bracketed segment has no parameter name.
const DefaultParamName = "slug"

// Kind is the classification of a segment.
type Kind int

const (
	Static Kind = iota
	Dynamic
	Optional
	CatchAll
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Optional:
		return "optional"
	case CatchAll:
		return "catchAll"
	default:
		return "static"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment is the parsed form of one raw path segment.
type Segment struct {
	// Raw is the original text, e.g. "[id$]".
	Raw string

	// ParamName is the identifier inside the brackets. For static segments it
	// equals Raw.
	ParamName string

	// PathPart is the normalized form used in route paths, e.g. ":id?".
	PathPart string

	// Kind is the segment classification.
	Kind Kind
}

// IsStatic reports whether the segment matches itself literally.
func (s Segment) IsStatic() bool {
	return s.Kind == Static
}

// NamePart returns the text the segment contributes to a route name: the raw
// text for static segments, the bare parameter name otherwise.
func (s Segment) NamePart() string {
	if s.Raw == "" {
		return ""
	}
	if s.Kind == Static {
		return s.Raw
	}
	return s.ParamName
}

// Parse classifies a raw segment.
//
// "[...name$]" is treated as a plain catch-all: the "$" is consumed but has
// no effect.
func Parse(raw string) Segment {
	if raw == "" {
		return Segment{Kind: Static}
	}

	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return Segment{
			Raw:       raw,
			ParamName: raw,
			PathPart:  raw,
			Kind:      Static,
		}
	}

	inner := raw[1 : len(raw)-1]

	optional := false
	if strings.HasSuffix(inner, "$") {
		optional = true
		inner = strings.TrimSuffix(inner, "$")
	}

	catchAll := false
	if strings.HasPrefix(inner, "...") {
		catchAll = true
		inner = inner[3:]
	}

	name := inner
	if name == "" {
		name = DefaultParamName
	}

	switch {
	case catchAll:
		return Segment{Raw: raw, ParamName: name, PathPart: ":" + name + "*", Kind: CatchAll}
	case optional:
		return Segment{Raw: raw, ParamName: name, PathPart: ":" + name + "?", Kind: Optional}
	default:
		return Segment{Raw: raw, ParamName: name, PathPart: ":" + name, Kind: Dynamic}
	}
}

// Split splits a slash-separated relative path into raw segments.
// An empty path yields no segments. Interior empty segments are kept.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
