package router

import "fmt"

// applyTransform runs fn over routes, children before parents. Each route's
// children are replaced by their transformed list before fn sees the route.
func applyTransform(routes []*Route, parent *Route, fn TransformFunc) ([]*Route, error) {
	out := make([]*Route, 0, len(routes))

	for _, route := range routes {
		children, err := applyTransform(route.Children, route, fn)
		if err != nil {
			return nil, err
		}
		route.Children = children

		if fn == nil {
			out = append(out, route)
			continue
		}

		replaced, err := fn(route, TransformContext{
			Segments:     route.Segments,
			RawSegments:  route.RawSegments,
			AbsolutePath: route.Path,
			IsRoot:       route.IsRoot(),
			Route:        route,
			Parent:       parent,
		})
		if err != nil {
			return nil, fmt.Errorf("transforming %s: %w", route.Path, err)
		}

		for _, r := range replaced {
			if r != nil {
				out = append(out, r)
			}
		}
	}

	return out, nil
}

// Keep returns route unchanged. It is the identity TransformFunc.
func Keep(route *Route, _ TransformContext) ([]*Route, error) {
	return []*Route{route}, nil
}
