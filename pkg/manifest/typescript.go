package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/tkrajina/typescriptify-golang-structs/typescriptify"

	"github.com/vango-dev/fsroutes/pkg/router"
)

// RouteRecord describes the TypeScript shape of a generated route.
type RouteRecord struct {
	Path        string        `json:"path"`
	Name        string        `json:"name"`
	Component   string        `json:"component" ts_type:"() => Promise<unknown>"`
	RawPath     string        `json:"rawPath"`
	Segments    []string      `json:"segments"`
	RawSegments []string      `json:"rawSegments"`
	Children    []RouteRecord `json:"children"`
}

// tsHeader marks generated modules.
const tsHeader = "// Code generated by fsroutes. DO NOT EDIT.\n\n"

// TypeScript returns a TypeScript module that exports the RouteRecord
// interface and a routes constant. Components become dynamic imports of the
// string EncodeOptions.Component renders.
func TypeScript(routes []*router.Route, opts EncodeOptions) ([]byte, error) {
	iface, err := routeRecordInterface()
	if err != nil {
		return nil, err
	}
	if opts.RawPathKey != "" && opts.RawPathKey != "rawPath" {
		end := strings.LastIndex(iface, "}")
		iface = iface[:end] + "    " + tsString(opts.RawPathKey) + ": string;\n" + iface[end:]
	}

	var b strings.Builder
	b.WriteString(tsHeader)
	b.WriteString(iface)
	b.WriteString("\n\nexport const routes: RouteRecord[] = ")
	writeTSRecords(&b, Records(routes, opts), opts.RawPathKey, "")
	b.WriteString(";\n\nexport default routes;\n")

	return []byte(b.String()), nil
}

// routeRecordInterface converts RouteRecord with typescriptify.
func routeRecordInterface() (string, error) {
	converter := typescriptify.New()
	converter.CreateInterface = true
	converter.Add(RouteRecord{})

	// quiet typescriptify logs
	oldStdout := os.Stdout
	null, _ := os.Open(os.DevNull)
	os.Stdout = null
	ts, err := converter.Convert(make(map[string]string))
	if null != nil {
		null.Close()
	}
	os.Stdout = oldStdout

	if err != nil {
		return "", errors.New("failed to convert RouteRecord to ts: " + err.Error())
	}

	idx := strings.Index(ts, "export interface")
	if idx < 0 {
		return "", errors.New("failed to convert RouteRecord to ts: no interface in output")
	}
	return strings.TrimSpace(ts[idx:]), nil
}

func writeTSRecords(b *strings.Builder, recs []Record, rawPathKey, indent string) {
	if len(recs) == 0 {
		b.WriteString("[]")
		return
	}

	inner := indent + "  "
	field := inner + "  "

	b.WriteString("[\n")
	for _, rec := range recs {
		b.WriteString(inner + "{\n")
		b.WriteString(field + "path: " + tsString(rec.Path) + ",\n")
		b.WriteString(field + "name: " + tsString(rec.Name) + ",\n")
		b.WriteString(field + "component: () => import(" + tsString(rec.Component) + "),\n")
		b.WriteString(field + "rawPath: " + tsString(rec.RawPath) + ",\n")
		if rawPathKey != "" && rawPathKey != "rawPath" {
			b.WriteString(field + tsString(rawPathKey) + ": " + tsString(rec.RawPath) + ",\n")
		}
		b.WriteString(field + "segments: " + tsStrings(rec.Segments) + ",\n")
		b.WriteString(field + "rawSegments: " + tsStrings(rec.RawSegments) + ",\n")
		b.WriteString(field + "children: ")
		writeTSRecords(b, rec.Children, rawPathKey, field)
		b.WriteString(",\n")
		b.WriteString(inner + "},\n")
	}
	b.WriteString(indent + "]")
}

// tsString quotes s as a string literal. JSON strings are valid TypeScript.
func tsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func tsStrings(s []string) string {
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = tsString(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
