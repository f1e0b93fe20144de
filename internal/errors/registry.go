package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E101-E199)
	// ============================================

	"E101": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Detail:     "No fsroutes.json was found in the directory or any of its parents.",
		Suggestion: "Run 'fsroutes init' or pass --config",
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "Invalid config file",
		Detail:     "fsroutes.json could not be read or is not valid JSON.",
		Suggestion: "Check that fsroutes.json is valid JSON",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration field has a value outside its allowed range.",
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Invalid path prefix",
		Detail:     "routes.pathPrefix is not a valid regular expression.",
		Suggestion: "Use RE2 syntax, e.g. \"^/src/views\"",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Config write failed",
		Detail:   "fsroutes.json could not be written.",
	},

	// ============================================
	// Discovery Errors (E201-E299)
	// ============================================

	"E201": {
		Category:   CategoryDiscovery,
		Message:    "Routes directory not found",
		Detail:     "The directory configured in source.dir does not exist.",
		Suggestion: "Check source.dir and routes.routerPathFolder in fsroutes.json",
	},
	"E202": {
		Category: CategoryDiscovery,
		Message:  "Route discovery failed",
		Detail:   "Route files could not be listed.",
	},
	"E203": {
		Category:   CategoryDiscovery,
		Message:    "S3 listing failed",
		Detail:     "Listing route files in the configured bucket failed.",
		Suggestion: "Check source.bucket, source.region and your AWS credentials",
	},

	// ============================================
	// Hook Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryHook,
		Message:  "Hook script failed to load",
		Detail:   "The Lua hook script could not be read or raised an error while loading.",
	},
	"E302": {
		Category: CategoryHook,
		Message:  "Hook failed",
		Detail:   "A hook function raised an error or returned a value of the wrong shape.",
	},

	// ============================================
	// Output Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryOutput,
		Message:  "Output write failed",
		Detail:   "The generated manifest could not be written.",
	},
	"E402": {
		Category: CategoryOutput,
		Message:  "Manifest encoding failed",
		Detail:   "The route tree could not be encoded.",
	},
	"E403": {
		Category:   CategoryOutput,
		Message:    "Invalid query",
		Detail:     "The query did not match anything in the manifest.",
		Suggestion: "Queries use gjson path syntax, e.g. \"0.children.#.name\"",
	},

	// ============================================
	// Server Errors (E501-E599)
	// ============================================

	"E501": {
		Category:   CategoryServer,
		Message:    "Dev server failed",
		Detail:     "The dev server could not start or stopped unexpectedly.",
		Suggestion: "Check that the port is free or pass --port",
	},
	"E502": {
		Category: CategoryServer,
		Message:  "Watcher failed",
		Detail:   "Watching the routes folder for changes failed.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
