package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/hookscope"
	"github.com/jward/hookscope/internal/discover"
	"github.com/jward/hookscope/internal/store"
	"github.com/jward/hookscope/modules"
)

var flagNoCache bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "List the files and exports a config would instrument",
	Long:  "Validates the config, discovers the files to instrument and lists the exports that would be wrapped in each. Export listings are cached by content hash.",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

var exportsCmd = &cobra.Command{
	Use:   "exports <file>",
	Short: "List the exports of one file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExports,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config without discovering files",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	planCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "parse every file instead of using the export cache")
}

// setupPlan runs Setup against an in-memory registry: the same validation
// and discovery a test harness gets.
func setupPlan(configPath string) (*hookscope.Plan, error) {
	raw, err := loadRawConfig(configPath)
	if err != nil {
		return nil, err
	}
	c := hookscope.NewCollector(hookscope.WithLogger(newLogger()))
	finder := &discover.Finder{Logger: newLogger()}
	return hookscope.Setup(c, raw, modules.NewTable(), hookscope.WithDiscoverer(finder))
}

func runPlan(cmd *cobra.Command, args []string) error {
	configPath := resolveConfigPath()
	plan, err := setupPlan(configPath)
	if err != nil {
		return outputError("plan", err)
	}

	var s *store.Store
	if !flagNoCache {
		dbPath := resolveDBPath(configPath)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return outputError("plan", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err))
		}
		s, err = store.Open(dbPath)
		if err != nil {
			return outputError("plan", err)
		}
		defer s.Close()
	}

	idx := &indexer{store: s, logger: newLogger()}
	files, err := idx.index(cmd.Context(), plan.Files)
	if err != nil {
		return outputError("plan", err)
	}
	return outputResult(CLIResult{Command: "plan", Results: files})
}

func runExports(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return outputError("exports", fmt.Errorf("resolving path %q: %w", args[0], err))
	}
	lang, ok := discover.LanguageForFile(path)
	if !ok {
		return outputError("exports", fmt.Errorf("unsupported file type: %s", path))
	}
	exports, err := discover.ExportsFile(cmd.Context(), path)
	if err != nil {
		return outputError("exports", err)
	}
	return outputResult(CLIResult{
		Command: "exports",
		Results: []CLIFile{{Path: path, Language: lang, Exports: toCLIExports(exports)}},
	})
}

func runValidate(cmd *cobra.Command, args []string) error {
	raw, err := loadRawConfig(resolveConfigPath())
	if err != nil {
		return outputError("validate", err)
	}
	cfg, err := hookscope.ParseConfig(raw)
	if err != nil {
		return outputError("validate", err)
	}
	for _, patterns := range [][]string{cfg.Include, cfg.Exclude, cfg.IncludeImports, cfg.ExcludeImports} {
		if err := discover.ValidatePatterns(patterns); err != nil {
			return outputError("validate", err)
		}
	}
	return outputResult(CLIResult{Command: "validate", Results: CLIConfig{
		Roots:          cfg.Roots,
		Extensions:     cfg.Extensions,
		Include:        cfg.Include,
		Exclude:        cfg.Exclude,
		IncludeImports: cfg.IncludeImports,
		ExcludeImports: cfg.ExcludeImports,
	}})
}

func toCLIExports(exports []discover.Export) []CLIExport {
	out := make([]CLIExport, 0, len(exports))
	for _, e := range exports {
		out = append(out, CLIExport{Name: e.Name, Kind: e.Kind, Line: e.Line})
	}
	return out
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(os.Stdout, result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError reports err in the selected format and returns it so the
// process exits non-zero.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}
