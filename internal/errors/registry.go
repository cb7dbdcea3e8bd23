package errors

import "sort"

// Template defines a registered error code.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]Template{
	"L001": {
		Category: CategoryManifest,
		Message:  "Manifest not found",
		Detail:   "The manifest file could not be read.",
	},
	"L002": {
		Category: CategoryManifest,
		Message:  "Manifest is invalid",
		Detail:   "The manifest could not be decoded into component definitions.",
	},
	"L003": {
		Category: CategoryManifest,
		Message:  "Unknown reference",
		Detail:   "A component imports a directive, pipe or component the manifest does not define.",
	},
	"L010": {
		Category: CategoryConfig,
		Message:  "Configuration is invalid",
		Detail:   "lumen.yaml or a LUMEN_* environment variable holds a value that cannot be used.",
	},
	"L020": {
		Category: CategoryRuntime,
		Message:  "Bootstrap failed",
		Detail:   "One or more components could not be registered as custom elements.",
	},
	"L021": {
		Category: CategoryRuntime,
		Message:  "Root component failed",
		Detail:   "The root component could not be created or rendered.",
	},
	"L030": {
		Category: CategoryPublish,
		Message:  "Publish failed",
		Detail:   "The rendered document could not be written to its destination.",
	},
	"L040": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with arguments it cannot use.",
	},
}

// Codes returns all registered error codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
