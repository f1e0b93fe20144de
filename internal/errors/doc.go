// Package errors provides structured, actionable error messages for fsroutes.
//
// Every error the command line reports carries a code, a short message, an
// explanation and, where one exists, a hint on how to fix it. Hook script
// errors also carry the script location and the surrounding lines.
//
// # Error Categories
//
//   - config: fsroutes.json is missing, malformed or invalid (E1xx)
//   - discovery: route files could not be listed (E2xx)
//   - hook: a Lua hook script failed to load or run (E3xx)
//   - output: the manifest could not be encoded or written (E4xx)
//   - server: the dev server or file watcher failed (E5xx)
//
// # Usage
//
//	err := errors.New("E302").
//	    Wrap(hookErr).
//	    WithLocationFromError(hookErr).
//	    WithSuggestion("Check that transform_route returns nil, true or a table")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E302: Hook failed
//	//
//	//   routes.lua:4
//	//
//	//      2 │ function transform_route(route, ctx)
//	//      3 │   if route.name == "" then
//	//   →  4 │     error("unnamed route")
//	//      5 │   end
//	//      6 │   return true
//	//
//	//   A hook function raised an error or returned a value of the wrong shape.
//	//
//	//   Hint: Check that transform_route returns nil, true or a table
package errors
