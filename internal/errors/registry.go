package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Protocol Errors (E060-E079)

	"E060": {
		Category: CategoryProtocol,
		Message:  "Invalid component stream",
		Detail:   "The component stream could not be decoded. The server and client may be running different versions.",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Component stream truncated",
		Detail:   "The component stream ended before its final frame was received.",
	},

	// Routing Errors (E100-E119)

	"E100": {
		Category: CategoryRouting,
		Message:  "Route manifest not found",
		Detail:   "The routes manifest has not been generated. Servers start with zero routes until discovery runs.",
	},
	"E101": {
		Category: CategoryRouting,
		Message:  "Invalid route manifest",
		Detail:   "The routes manifest exists but is not valid JSON.",
	},
	"E102": {
		Category: CategoryRouting,
		Message:  "No routes discovered",
		Detail:   "The app directory does not contain any page files.",
	},
	"E103": {
		Category: CategoryRouting,
		Message:  "App directory not found",
		Detail:   "The configured app directory does not exist.",
	},

	// Configuration Errors (E120-E139)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid mfext.json",
		Detail:   "The mfext.json configuration file is malformed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "Ports must be between 1 and 65535, and the SSR and RSC ports must differ.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid RSC server URL",
		Detail:   "The RSC server URL must be an absolute http or https URL.",
	},

	// CLI Errors (E140-E159)

	"E140": {
		Category: CategoryCLI,
		Message:  "Not an mfext project",
		Detail:   "No go.mod was found in this directory or any parent directory.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Build files not found",
		Detail:   "The dist directory or the compiled server is missing.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Build failed",
		Detail:   "The Go build command failed. Check the output for compiler errors.",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Unknown build target",
		Detail:   "Valid build targets are discover, client, ssr, rsc and all.",
	},
	"E144": {
		Category: CategoryCLI,
		Message:  "Unknown server mode",
		Detail:   "Valid server modes are rsc, ssr and both.",
	},
	"E145": {
		Category: CategoryCLI,
		Message:  "Go not found",
		Detail:   "Go is not installed or not in PATH.",
	},
	"E146": {
		Category: CategoryCLI,
		Message:  "Server process failed",
		Detail:   "The server process exited with an error.",
	},
	"E147": {
		Category: CategoryCLI,
		Message:  "Invalid project",
		Detail:   "The project name or directory cannot be used for a new project.",
	},
	"E148": {
		Category: CategoryCLI,
		Message:  "Unknown template",
		Detail:   "Valid project templates are minimal and full.",
	},

	// Build Errors (E160-E179)

	"E160": {
		Category: CategoryBuild,
		Message:  "Code generation failed",
		Detail:   "The component registry could not be generated.",
	},
	"E161": {
		Category: CategoryBuild,
		Message:  "Client build failed",
		Detail:   "Static assets or the client bundle could not be written.",
	},
	"E162": {
		Category: CategoryBuild,
		Message:  "Publish failed",
		Detail:   "Static assets could not be uploaded to the bucket.",
	},

	// Runtime Errors (E180-E199)

	"E180": {
		Category: CategoryRuntime,
		Message:  "Component load failed",
		Detail:   "The component importer returned an error for this identifier.",
	},
	"E181": {
		Category: CategoryRuntime,
		Message:  "Missing default export",
		Detail:   "The module was found but does not provide a default component.",
	},
	"E182": {
		Category: CategoryRuntime,
		Message:  "Missing layout component",
		Detail:   "A layout in the route's layout chain has no loaded component.",
	},
}

// AllCodes returns all registered error codes in sorted order.
func AllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Template returns the template for an error code.
func Template(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
