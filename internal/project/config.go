package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultTriple is the code-generation target when tml.toml does not set
// one.
const DefaultTriple = "x86_64-unknown-linux-gnu"

// ColorMode controls diagnostic coloring.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Config is the parsed tml.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Diag    DiagConfig    `toml:"diagnostics"`
}

// PackageConfig is the [package] section.
type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig is the [build] section.
type BuildConfig struct {
	Target  string `toml:"target"`
	EmitDir string `toml:"emit_dir"`
	// StackSizeCeiling overrides the class size above which instances
	// stop being stack candidates. Zero keeps the built-in ceiling.
	StackSizeCeiling int `toml:"stack_size_ceiling"`
}

// DiagConfig is the [diagnostics] section.
type DiagConfig struct {
	Color ColorMode `toml:"color"`
	JSON  bool      `toml:"json"`
}

// ErrPackageNameMissing indicates that [package].name is missing.
var ErrPackageNameMissing = errors.New("missing [package].name")

// Load parses a tml.toml and fills in defaults.
func Load(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	cfg.Package.Name = strings.TrimSpace(cfg.Package.Name)
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no tml.toml is present.
func Default(name string) Config {
	cfg := Config{Package: PackageConfig{Name: name}}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Build.Target == "" {
		cfg.Build.Target = DefaultTriple
	}
	if cfg.Build.EmitDir == "" {
		cfg.Build.EmitDir = "build"
	}
	if cfg.Diag.Color == "" {
		cfg.Diag.Color = ColorAuto
	}
}

func (c Config) validate() error {
	var errs []error
	switch c.Diag.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("invalid diagnostics.color %q", c.Diag.Color))
	}
	if c.Build.StackSizeCeiling < 0 {
		errs = append(errs, fmt.Errorf("invalid build.stack_size_ceiling %d", c.Build.StackSizeCeiling))
	}
	return errors.Join(errs...)
}
