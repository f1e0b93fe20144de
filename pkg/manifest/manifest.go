// Package manifest encodes generated routes for client-side routers.
//
// Encode writes a JSON manifest; TypeScript writes a module exporting the
// route tree with lazy imports. Both accept the same route list returned by
// router.Generate.
package manifest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/vango-dev/fsroutes/pkg/router"
)

// Record is the JSON form of a route.
type Record struct {
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Component   string   `json:"component"`
	RawPath     string   `json:"rawPath"`
	Segments    []string `json:"segments"`
	RawSegments []string `json:"rawSegments"`
	Children    []Record `json:"children"`
}

// EncodeOptions configures Encode and TypeScript.
type EncodeOptions struct {
	// RawPathKey additionally exposes the raw path under this key when it is
	// not "rawPath". Empty disables it.
	RawPathKey string

	// RelativeChildren writes child paths relative to their parent route
	// instead of absolute.
	RelativeChildren bool

	// Component renders a loader. Default: ComponentString.
	Component func(router.Loader) string

	// Compact disables indentation.
	Compact bool
}

// ComponentString renders a loader as a string: strings and fmt.Stringers
// as themselves, nil as "", anything else with fmt.Sprint.
func ComponentString(loader router.Loader) string {
	switch v := loader.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Records converts routes to records.
func Records(routes []*router.Route, opts EncodeOptions) []Record {
	return records(routes, nil, opts)
}

func records(routes []*router.Route, parent *router.Route, opts EncodeOptions) []Record {
	component := opts.Component
	if component == nil {
		component = ComponentString
	}

	out := make([]Record, 0, len(routes))
	for _, r := range routes {
		path := r.Path
		if opts.RelativeChildren {
			path = r.RelativePath(parent)
		}
		out = append(out, Record{
			Path:        path,
			Name:        r.Name,
			Component:   component(r.Component),
			RawPath:     r.RawPath,
			Segments:    nonNil(r.Segments),
			RawSegments: nonNil(r.RawSegments),
			Children:    records(r.Children, r, opts),
		})
	}
	return out
}

// Encode returns the JSON manifest for routes.
func Encode(routes []*router.Route, opts EncodeOptions) ([]byte, error) {
	recs := Records(routes, opts)

	data, err := json.Marshal(recs)
	if err != nil {
		return nil, err
	}

	if opts.RawPathKey != "" && opts.RawPathKey != "rawPath" {
		data, err = setRawPathKey(data, recs, "", escapeKey(opts.RawPathKey))
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", opts.RawPathKey, err)
		}
	}

	if opts.Compact {
		return data, nil
	}
	return pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "  "}), nil
}

// setRawPathKey writes each record's raw path under key, recursively.
func setRawPathKey(data []byte, recs []Record, prefix, key string) ([]byte, error) {
	var err error
	for i, rec := range recs {
		at := prefix + strconv.Itoa(i)
		data, err = sjson.SetBytes(data, at+"."+key, rec.RawPath)
		if err != nil {
			return nil, err
		}
		if len(rec.Children) > 0 {
			data, err = setRawPathKey(data, rec.Children, at+".children.", key)
			if err != nil {
				return nil, err
			}
		}
	}
	return data, nil
}

// escapeKey escapes gjson/sjson path syntax in a literal object key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, c := range key {
		switch c {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Query evaluates a gjson path against a manifest.
func Query(data []byte, path string) (string, bool) {
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return "", false
	}
	return res.Raw, true
}

// FindByName returns the raw JSON of the first record named name, searching
// children depth-first.
func FindByName(data []byte, name string) (string, bool) {
	return findByName(gjson.ParseBytes(data), name)
}

func findByName(list gjson.Result, name string) (string, bool) {
	var found string
	var ok bool
	list.ForEach(func(_, rec gjson.Result) bool {
		if rec.Get("name").String() == name {
			found, ok = rec.Raw, true
			return false
		}
		if children := rec.Get("children"); children.IsArray() {
			found, ok = findByName(children, name)
		}
		return !ok
	})
	return found, ok
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
