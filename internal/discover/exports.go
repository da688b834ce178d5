package discover

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Export is a top-level callable a module exposes.
type Export struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // "func", "class" or "value"
	Line int    `json:"line"`
}

// exportQueries select exported declarations per language. Capture names
// are the export kinds.
var exportQueries = map[string]string{
	"go": `
((function_declaration name: (identifier) @func)
 (#match? @func "^[A-Z]"))`,
	"javascript": `
(export_statement declaration: (function_declaration name: (identifier) @func))
(export_statement declaration: (generator_function_declaration name: (identifier) @func))
(export_statement declaration: (class_declaration name: (_) @class))
(export_statement declaration: (lexical_declaration (variable_declarator name: (identifier) @value)))`,
	"typescript": `
(export_statement declaration: (function_declaration name: (identifier) @func))
(export_statement declaration: (generator_function_declaration name: (identifier) @func))
(export_statement declaration: (class_declaration name: (_) @class))
(export_statement declaration: (lexical_declaration (variable_declarator name: (identifier) @value)))`,
}

// risorFunc matches top-level named functions in Risor source.
var risorFunc = regexp.MustCompile(`(?m)^func\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// ExportsFile reads path and lists its exports.
func ExportsFile(ctx context.Context, path string) ([]Export, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("exports %s: unsupported file type", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("exports: %w", err)
	}
	return Exports(ctx, lang, src)
}

// Exports lists the exports of src written in lang, ordered by line.
func Exports(ctx context.Context, lang string, src []byte) ([]Export, error) {
	if lang == "risor" {
		return risorExports(src), nil
	}

	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("exports: unsupported language %q", lang)
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("exports: parse %s: %w", lang, err)
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(exportQueries[lang]), grammar)
	if err != nil {
		return nil, fmt.Errorf("exports: query %s: %w", lang, err)
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, tree.RootNode())

	var out []Export
	for {
		match, found := cursor.NextMatch()
		if !found {
			break
		}
		match = cursor.FilterPredicates(match, src)
		for _, capture := range match.Captures {
			out = append(out, Export{
				Name: capture.Node.Content(src),
				Kind: q.CaptureNameForId(capture.Index),
				Line: int(capture.Node.StartPoint().Row) + 1,
			})
		}
	}
	sortExports(out)
	return out, nil
}

func risorExports(src []byte) []Export {
	var out []Export
	for _, loc := range risorFunc.FindAllSubmatchIndex(src, -1) {
		out = append(out, Export{
			Name: string(src[loc[2]:loc[3]]),
			Kind: "func",
			Line: lineOf(src, loc[0]),
		})
	}
	return out
}

func lineOf(src []byte, offset int) int {
	line := 1
	for _, b := range src[:offset] {
		if b == '\n' {
			line++
		}
	}
	return line
}

func sortExports(exports []Export) {
	sort.SliceStable(exports, func(i, j int) bool {
		if exports[i].Line != exports[j].Line {
			return exports[i].Line < exports[j].Line
		}
		return exports[i].Name < exports[j].Name
	})
}
