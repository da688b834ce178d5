package main

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIFile is one planned file with the exports that would be wrapped.
type CLIFile struct {
	Path     string      `json:"path"`
	Language string      `json:"language"`
	Cached   bool        `json:"cached"`
	Exports  []CLIExport `json:"exports"`
}

// CLIExport is a JSON-friendly export.
type CLIExport struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

// CLIConfig is the validated configuration.
type CLIConfig struct {
	Roots          []string `json:"roots"`
	Extensions     []string `json:"extensions"`
	Include        []string `json:"include,omitempty"`
	Exclude        []string `json:"exclude,omitempty"`
	IncludeImports []string `json:"include_imports,omitempty"`
	ExcludeImports []string `json:"exclude_imports,omitempty"`
}
