// Package config loads optional upkeep defaults from a project file.
//
// The file is TOML (.upkeep.toml) or YAML (.upkeep.yaml, .upkeep.yml):
//
//	[tree]
//	depth = 3
//	duplicates = false
//	features = true
//	no_dev = true
//	format = "text"
//
//	[serve]
//	addr = ":8080"
//	watch = true
//	rate_limit = 50
//	burst = 100
//
// Command-line flags that were set explicitly override file values. See
// [Resolve] for how the file is located.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/upkeep/pkg/errors"
)

// EnvVar names the config file when no --config flag is given.
const EnvVar = "UPKEEP_CONFIG"

// DefaultFiles are looked up in the working directory, in order.
var DefaultFiles = []string{".upkeep.toml", ".upkeep.yaml", ".upkeep.yml"}

// Defaults used when neither the file nor a flag sets a value.
const (
	DefaultFormat = "text"
	DefaultAddr   = ":8080"
	DefaultRate   = 50.0
	DefaultBurst  = 100
)

// Config holds file-provided defaults.
type Config struct {
	Tree  TreeConfig  `toml:"tree" yaml:"tree"`
	Serve ServeConfig `toml:"serve" yaml:"serve"`
}

// TreeConfig holds defaults for tree views.
type TreeConfig struct {
	// Depth limits expansion when set. Nil means unlimited.
	Depth      *int   `toml:"depth" yaml:"depth" validate:"omitempty,min=0"`
	Duplicates bool   `toml:"duplicates" yaml:"duplicates"`
	Features   bool   `toml:"features" yaml:"features"`
	NoDev      bool   `toml:"no_dev" yaml:"no_dev"`
	Format     string `toml:"format" yaml:"format" validate:"omitempty,oneof=text json dot svg"`
	Ceiling    int    `toml:"ceiling" yaml:"ceiling" validate:"min=0"`
}

// ServeConfig holds defaults for the HTTP API.
type ServeConfig struct {
	Addr  string `toml:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
	Watch bool   `toml:"watch" yaml:"watch"`
	// RateLimit is requests per second across all clients. Zero disables it.
	RateLimit float64 `toml:"rate_limit" yaml:"rate_limit" validate:"min=0"`
	Burst     int     `toml:"burst" yaml:"burst" validate:"min=0"`
}

var validate = newValidator()

// newValidator reports fields by their file key, e.g. "tree.format".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		return name
	})
	return v
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Tree:  TreeConfig{Format: DefaultFormat},
		Serve: ServeConfig{Addr: DefaultAddr, RateLimit: DefaultRate, Burst: DefaultBurst},
	}
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			return errs.New(errs.ErrCodeInvalidInput, "config %s: invalid value %v (%s)", field, fe.Value(), fe.Tag())
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "validate config")
	}
	return nil
}

// Resolve returns the config file to read and whether it was named
// explicitly. flagPath wins, then the EnvVar environment variable, then the
// first of DefaultFiles present in dir. An empty path means no file.
func Resolve(flagPath, dir string) (path string, explicit bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env, true
	}
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, false
		}
	}
	return "", false
}

// Discover resolves and loads the config for dir. A missing implicit file
// yields Default(); a missing explicit file is ErrCodeFileNotFound.
func Discover(flagPath, dir string) (Config, string, error) {
	path, _ := Resolve(flagPath, dir)
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// Load reads path on top of Default(). The format follows the extension:
// .yaml and .yml are YAML, anything else TOML. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		err = decodeTOML(data, &cfg)
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errs.New(errs.ErrCodeInvalidFormat, "unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}
