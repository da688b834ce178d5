package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// formatFilesText formats planned files as one aligned row per export.
func formatFilesText(w io.Writer, files []CLIFile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tLANGUAGE\tEXPORT\tKIND\tLINE")
	for _, f := range files {
		if len(f.Exports) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\n", f.Path, f.Language)
			continue
		}
		for _, e := range f.Exports {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", f.Path, f.Language, e.Name, e.Kind, e.Line)
		}
	}
	tw.Flush()
}

// formatConfigText formats a validated config as key: value lines.
func formatConfigText(w io.Writer, cfg CLIConfig) {
	fields := []struct {
		name   string
		values []string
	}{
		{"roots", cfg.Roots},
		{"extensions", cfg.Extensions},
		{"include", cfg.Include},
		{"exclude", cfg.Exclude},
		{"includeImports", cfg.IncludeImports},
		{"excludeImports", cfg.ExcludeImports},
	}
	for _, f := range fields {
		if len(f.values) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", f.name, strings.Join(f.values, ", "))
	}
}

// outputResultText dispatches to the text formatter for the result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIFile:
		formatFilesText(w, v)
	case CLIConfig:
		formatConfigText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
