package hookscope

import (
	"fmt"

	"github.com/jward/hookscope/host"
	"github.com/jward/hookscope/internal/discover"
	"github.com/jward/hookscope/modules"
)

// Discoverer lists the files to instrument.
type Discoverer interface {
	Discover(roots, extensions, include, exclude []string) ([]string, error)
}

type setupConfig struct {
	discoverer  Discoverer
	adapterOpts []AdapterOption
}

// SetupOption configures Setup.
type SetupOption func(*setupConfig)

// WithDiscoverer replaces the default git/filesystem discovery.
func WithDiscoverer(d Discoverer) SetupOption {
	return func(cfg *setupConfig) {
		cfg.discoverer = d
	}
}

// WithAdapterOptions configures the adapter Setup installs for the host
// module.
func WithAdapterOptions(opts ...AdapterOption) SetupOption {
	return func(cfg *setupConfig) {
		cfg.adapterOpts = append(cfg.adapterOpts, opts...)
	}
}

// Plan is the result of Setup.
type Plan struct {
	Config  *Config
	Files   []string
	Adapter *Adapter
}

// AppliesTo reports whether the harness applies to testFile under the
// config's include and exclude filters. Patterns are matched against the
// path relative to each root and against the path itself.
func (p *Plan) AppliesTo(testFile string) bool {
	if len(p.Config.Include) == 0 && len(p.Config.Exclude) == 0 {
		return true
	}
	for _, root := range p.Config.Roots {
		if discover.Selected(root, testFile, p.Config.Include, p.Config.Exclude) {
			return true
		}
	}
	return false
}

// Setup validates raw, discovers the files to instrument and registers with
// reg one wrapping factory per file plus the adapter factory for the host
// primitive module. A configuration error is returned before anything is
// registered.
func Setup(c *Collector, raw map[string]any, reg modules.Registry, opts ...SetupOption) (*Plan, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	for field, patterns := range map[string][]string{
		"include":        cfg.Include,
		"exclude":        cfg.Exclude,
		"includeImports": cfg.IncludeImports,
		"excludeImports": cfg.ExcludeImports,
	} {
		if err := discover.ValidatePatterns(patterns); err != nil {
			return nil, &ConfigError{Field: field, Reason: err.Error()}
		}
	}

	sc := &setupConfig{discoverer: &discover.Finder{Logger: c.logger}}
	for _, opt := range opts {
		opt(sc)
	}

	files, err := sc.discoverer.Discover(cfg.Roots, cfg.Extensions, cfg.IncludeImports, cfg.ExcludeImports)
	if err != nil {
		return nil, fmt.Errorf("hookscope: discover: %w", err)
	}

	for _, path := range files {
		if err := reg.Mock(path, c.ModuleFactory(path)); err != nil {
			return nil, fmt.Errorf("hookscope: mock %s: %w", path, err)
		}
	}

	adapter := NewAdapter(c, sc.adapterOpts...)
	if err := reg.Mock(host.ModulePath, adapter.Factory()); err != nil {
		return nil, fmt.Errorf("hookscope: mock %s: %w", host.ModulePath, err)
	}

	c.logger.Debug("setup complete", "files", len(files), "roots", cfg.Roots)
	return &Plan{Config: cfg, Files: files, Adapter: adapter}, nil
}
