package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jward/hookscope/internal/discover"
	"github.com/jward/hookscope/internal/store"
)

// indexer lists the exports of planned files. With a store, files whose
// content hash matches the cached row are not parsed again and rows for
// files no longer planned are dropped.
type indexer struct {
	store  *store.Store
	logger *slog.Logger
}

func (ix *indexer) index(ctx context.Context, paths []string) ([]CLIFile, error) {
	out := make([]CLIFile, 0, len(paths))
	parsed, cached := 0, 0
	for _, path := range paths {
		f, err := ix.file(ctx, path)
		if err != nil {
			return nil, err
		}
		if f.Cached {
			cached++
		} else {
			parsed++
		}
		out = append(out, f)
	}

	if ix.store != nil {
		removed, err := ix.store.DeleteMissing(paths)
		if err != nil {
			return nil, fmt.Errorf("pruning cache: %w", err)
		}
		ix.logger.Debug("pruned cache", "removed", removed)
	}
	ix.logger.Debug("indexed plan", "files", len(paths), "parsed", parsed, "cached", cached)
	return out, nil
}

func (ix *indexer) file(ctx context.Context, path string) (CLIFile, error) {
	lang, ok := discover.LanguageForFile(path)
	if !ok {
		// Configured extensions may include languages without an export
		// grammar; such files are still instrumented.
		return CLIFile{Path: path, Language: "unknown", Exports: []CLIExport{}}, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return CLIFile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	hash := store.ContentHash(src)

	if ix.store != nil {
		rows, ok, err := ix.store.Lookup(path, hash)
		if err != nil {
			return CLIFile{}, err
		}
		if ok {
			exports := make([]CLIExport, 0, len(rows))
			for _, e := range rows {
				exports = append(exports, CLIExport{Name: e.Name, Kind: e.Kind, Line: e.Line})
			}
			return CLIFile{Path: path, Language: lang, Cached: true, Exports: exports}, nil
		}
	}

	exports, err := discover.Exports(ctx, lang, src)
	if err != nil {
		return CLIFile{}, fmt.Errorf("%s: %w", path, err)
	}

	if ix.store != nil {
		rows := make([]*store.Export, 0, len(exports))
		for _, e := range exports {
			rows = append(rows, &store.Export{Name: e.Name, Kind: e.Kind, Line: e.Line})
		}
		f := &store.File{Path: path, Language: lang, Hash: hash, LastIndexed: time.Now()}
		if err := ix.store.ReplaceFile(f, rows); err != nil {
			return CLIFile{}, fmt.Errorf("caching %s: %w", path, err)
		}
	}
	return CLIFile{Path: path, Language: lang, Exports: toCLIExports(exports)}, nil
}
