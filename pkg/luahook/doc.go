// Package luahook exposes router hooks written in Lua.
//
// A hook script defines any of three global functions:
//
//	-- name every route after its raw path
//	function resolve_name(ctx)
//	  if ctx.isRoot then return "home" end
//	  return table.concat(ctx.rawSegments, ".")
//	end
//
//	-- drop drafts, rename the rest
//	function transform_route(route, ctx)
//	  if route.rawPath:find("^drafts") then return nil end
//	  return { name = "app." .. route.name }
//	end
//
//	-- keep only these top-level routes, in this order
//	function extend_routes(routes)
//	  return { "root", "docsSlug" }
//	end
//
// Scripts run in a sandboxed state with only the base, table, string and math
// libraries. Usage:
//
//	hooks, err := luahook.LoadFile("routes.lua")
//	if err != nil {
//	    return err
//	}
//	defer hooks.Close()
//
//	opts := router.Options{}
//	hooks.Apply(&opts)
//	routes, err := router.Generate(modules, opts)
package luahook
