package luahook

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/vango-dev/fsroutes/pkg/router"
)

func stringsTable(L *lua.LState, s []string) *lua.LTable {
	t := L.CreateTable(len(s), 0)
	for _, v := range s {
		t.Append(lua.LString(v))
	}
	return t
}

func nameContextTable(L *lua.LState, ctx router.NameContext) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("segments", stringsTable(L, ctx.Segments))
	t.RawSetString("rawSegments", stringsTable(L, ctx.RawSegments))
	t.RawSetString("absolutePath", lua.LString(ctx.AbsolutePath))
	t.RawSetString("isRoot", lua.LBool(ctx.IsRoot))
	return t
}

func transformContextTable(L *lua.LState, ctx router.TransformContext) *lua.LTable {
	t := nameContextTable(L, router.NameContext{
		Segments:     ctx.Segments,
		RawSegments:  ctx.RawSegments,
		AbsolutePath: ctx.AbsolutePath,
		IsRoot:       ctx.IsRoot,
	})
	if ctx.Parent != nil {
		t.RawSetString("parent", routeTable(L, ctx.Parent))
	}
	return t
}

// routeTable converts a route and its children. The component loader is not
// exposed.
func routeTable(L *lua.LState, r *router.Route) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("path", lua.LString(r.Path))
	t.RawSetString("name", lua.LString(r.Name))
	t.RawSetString("rawPath", lua.LString(r.RawPath))
	t.RawSetString("segments", stringsTable(L, r.Segments))
	t.RawSetString("rawSegments", stringsTable(L, r.RawSegments))

	children := L.CreateTable(len(r.Children), 0)
	for _, child := range r.Children {
		children.Append(routeTable(L, child))
	}
	t.RawSetString("children", children)
	return t
}

// applyOverrides returns a copy of r with the name and path fields of t
// applied.
func applyOverrides(r *router.Route, t *lua.LTable) (*router.Route, error) {
	out := *r

	for _, field := range []struct {
		key string
		dst *string
	}{
		{"name", &out.Name},
		{"path", &out.Path},
	} {
		switch v := t.RawGetString(field.key).(type) {
		case *lua.LNilType:
		case lua.LString:
			*field.dst = string(v)
		default:
			return nil, &ResultError{
				Hook: TransformRouteFunc,
				Msg:  fmt.Sprintf("%s: expected string, got %s", field.key, v.Type()),
			}
		}
	}
	return &out, nil
}
