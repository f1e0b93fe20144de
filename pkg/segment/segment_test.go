package segment

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw       string
		kind      Kind
		pathPart  string
		paramName string
	}{
		{"", Static, "", ""},
		{"about", Static, "about", "about"},
		{"user-profile", Static, "user-profile", "user-profile"},
		{"[id]", Dynamic, ":id", "id"},
		{"[id$]", Optional, ":id?", "id"},
		{"[...slug]", CatchAll, ":slug*", "slug"},
		{"[...path]", CatchAll, ":path*", "path"},
		{"[]", Dynamic, ":slug", "slug"},
		{"[$]", Optional, ":slug?", "slug"},
		{"[...]", CatchAll, ":slug*", "slug"},
		// optional catch-all degrades to catch-all
		{"[...rest$]", CatchAll, ":rest*", "rest"},
		// unbalanced brackets are static
		{"[id", Static, "[id", "[id"},
		{"id]", Static, "id]", "id]"},
	}

	for _, tt := range tests {
		got := Parse(tt.raw)
		if got.Raw != tt.raw {
			t.Errorf("Parse(%q).Raw = %q", tt.raw, got.Raw)
		}
		if got.Kind != tt.kind {
			t.Errorf("Parse(%q).Kind = %v, want %v", tt.raw, got.Kind, tt.kind)
		}
		if got.PathPart != tt.pathPart {
			t.Errorf("Parse(%q).PathPart = %q, want %q", tt.raw, got.PathPart, tt.pathPart)
		}
		if got.ParamName != tt.paramName {
			t.Errorf("Parse(%q).ParamName = %q, want %q", tt.raw, got.ParamName, tt.paramName)
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	for _, raw := range []string{"news", "[id]", "[id$]", "[...slug]"} {
		if Parse(raw) != Parse(raw) {
			t.Errorf("Parse(%q) not stable", raw)
		}
	}
}

func TestNamePart(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"news", "news"},
		{"[id]", "id"},
		{"[id$]", "id"},
		{"[...slug]", "slug"},
		{"[]", "slug"},
	}

	for _, tt := range tests {
		if got := Parse(tt.raw).NamePart(); got != tt.want {
			t.Errorf("Parse(%q).NamePart() = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		Static:   "static",
		Dynamic:  "dynamic",
		Optional: "optional",
		CatchAll: "catchAll",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}

	data, err := json.Marshal(struct{ Kind Kind }{CatchAll})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"Kind":"catchAll"}` {
		t.Errorf("json = %s", data)
	}
}

func TestSplit(t *testing.T) {
	if got := Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	got := Split("news/[id]/edit")
	want := []string{"news", "[id]", "edit"}
	if len(got) != len(want) {
		t.Fatalf("Split len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Split[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
