package luahook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/vango-dev/fsroutes/pkg/router"
)

// Global function names looked up in hook scripts.
const (
	ResolveNameFunc    = "resolve_name"
	TransformRouteFunc = "transform_route"
	ExtendRoutesFunc   = "extend_routes"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Hooks holds a loaded hook script.
//
// gopher-lua states are not goroutine-safe; calls are serialized.
type Hooks struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	closed  bool
}

// Option configures Hooks.
type Option func(*Hooks)

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(h *Hooks) {
		h.timeout = d
	}
}

// LoadFile loads a hook script from path.
func LoadFile(path string, opts ...Option) (*Hooks, error) {
	return load(func(L *lua.LState) error { return L.DoFile(path) }, opts)
}

// LoadString loads a hook script from source.
func LoadString(source string, opts ...Option) (*Hooks, error) {
	return load(func(L *lua.LState) error { return L.DoString(source) }, opts)
}

func load(run func(*lua.LState) error, opts []Option) (*Hooks, error) {
	h := &Hooks{
		L:       newSandbox(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}

	err := h.protect(func() error {
		ctx, cancel := h.callContext()
		defer cancel()
		h.L.SetContext(ctx)
		defer h.L.RemoveContext()
		return timeoutError(ctx, run(h.L))
	})
	if err != nil {
		h.L.Close()
		return nil, fmt.Errorf("loading hook script: %w", err)
	}
	return h, nil
}

// newSandbox opens a state with the safe standard libraries only.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Close releases the Lua state.
func (h *Hooks) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		h.L.Close()
	}
}

// Has reports whether the script defines the global function name.
func (h *Hooks) Has(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	return h.L.GetGlobal(name).Type() == lua.LTFunction
}

// Apply sets the router hooks for the functions the script defines. Hooks the
// script does not define are left untouched.
func (h *Hooks) Apply(opts *router.Options) {
	if h.Has(ResolveNameFunc) {
		opts.ResolveRouteName = h.ResolveName
	}
	if h.Has(TransformRouteFunc) {
		opts.TransformRoute = h.TransformRoute
	}
	if h.Has(ExtendRoutesFunc) {
		opts.ExtendRoutes = h.ExtendRoutes
	}
}

// ResolveName calls resolve_name(ctx). An empty or nil result falls back to
// router.DefaultRouteName.
func (h *Hooks) ResolveName(ctx router.NameContext) (string, error) {
	ret, err := h.call(ResolveNameFunc, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{nameContextTable(L, ctx)}
	})
	if err != nil {
		return "", err
	}

	switch v := ret.(type) {
	case *lua.LNilType:
		return router.DefaultRouteName(ctx)
	case lua.LString:
		if v == "" {
			return router.DefaultRouteName(ctx)
		}
		return string(v), nil
	default:
		return "", &ResultError{Hook: ResolveNameFunc, Msg: "expected string, got " + ret.Type().String()}
	}
}

// TransformRoute calls transform_route(route, ctx).
//
// nil or false drops the route, true keeps it, a table of overrides
// (name, path) replaces it with a modified copy, and an array of override
// tables replaces it with one copy per element.
func (h *Hooks) TransformRoute(route *router.Route, ctx router.TransformContext) ([]*router.Route, error) {
	ret, err := h.call(TransformRouteFunc, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{routeTable(L, route), transformContextTable(L, ctx)}
	})
	if err != nil {
		return nil, err
	}

	switch v := ret.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		if v {
			return []*router.Route{route}, nil
		}
		return nil, nil
	case *lua.LTable:
		if v.RawGetInt(1) == lua.LNil {
			r, err := applyOverrides(route, v)
			if err != nil {
				return nil, err
			}
			return []*router.Route{r}, nil
		}

		out := make([]*router.Route, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			t, ok := v.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, &ResultError{
					Hook: TransformRouteFunc,
					Msg:  fmt.Sprintf("element %d: expected table, got %s", i, v.RawGetInt(i).Type()),
				}
			}
			r, err := applyOverrides(route, t)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, &ResultError{Hook: TransformRouteFunc, Msg: "expected nil, boolean or table, got " + ret.Type().String()}
	}
}

// ExtendRoutes calls extend_routes(routes). nil keeps the list; an array of
// route names selects top-level routes in that order.
func (h *Hooks) ExtendRoutes(routes []*router.Route) ([]*router.Route, error) {
	ret, err := h.call(ExtendRoutesFunc, func(L *lua.LState) []lua.LValue {
		t := L.CreateTable(len(routes), 0)
		for _, r := range routes {
			t.Append(routeTable(L, r))
		}
		return []lua.LValue{t}
	})
	if err != nil {
		return nil, err
	}

	if ret == lua.LNil {
		return routes, nil
	}
	t, ok := ret.(*lua.LTable)
	if !ok {
		return nil, &ResultError{Hook: ExtendRoutesFunc, Msg: "expected nil or table, got " + ret.Type().String()}
	}

	byName := make(map[string]*router.Route, len(routes))
	for _, r := range routes {
		if _, dup := byName[r.Name]; !dup {
			byName[r.Name] = r
		}
	}

	out := make([]*router.Route, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		name, ok := t.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, &ResultError{
				Hook: ExtendRoutesFunc,
				Msg:  fmt.Sprintf("element %d: expected route name, got %s", i, t.RawGetInt(i).Type()),
			}
		}
		r, ok := byName[string(name)]
		if !ok {
			return nil, &ResultError{Hook: ExtendRoutesFunc, Msg: fmt.Sprintf("unknown route %q", string(name))}
		}
		out = append(out, r)
	}
	return out, nil
}

// call invokes a global function with the arguments args builds and returns
// its first result.
func (h *Hooks) call(fn string, args func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	fnVal := h.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%s: not a function (got %s)", fn, fnVal.Type())
	}

	var ret lua.LValue
	err := h.protect(func() error {
		ctx, cancel := h.callContext()
		defer cancel()
		h.L.SetContext(ctx)
		defer h.L.RemoveContext()

		err := h.L.CallByParam(lua.P{Fn: fnVal, NRet: 1, Protect: true}, args(h.L)...)
		if err != nil {
			return timeoutError(ctx, err)
		}
		ret = h.L.Get(-1)
		h.L.Pop(1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return ret, nil
}

func (h *Hooks) callContext() (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), h.timeout)
}

// protect runs fn, converting panics from the Lua runtime into errors.
func (h *Hooks) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// timeoutError replaces err with ErrTimeout when ctx expired.
func timeoutError(ctx context.Context, err error) error {
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
