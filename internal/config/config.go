// Package config holds scopefind's settings: defaults, an optional YAML
// file, SCOPEFIND_* environment variables and command-line flags, layered
// in that order through viper.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/altinukshini/scopefind/internal/model"
)

// ErrNotDirectory is returned by Validate when the root is not an existing
// directory.
var ErrNotDirectory = errors.New("not a directory")

const (
	EnvPrefix = "SCOPEFIND"
	appName   = "scopefind"
	fileName  = "config.yaml"
)

// Viper keys. Flags bind to the same keys.
const (
	KeyRoot          = "root"
	KeyMaxMatches    = "max_matches"
	KeyMaxFileSize   = "max_file_size"
	KeyMaxCandidates = "max_candidates"
	KeyPreviewWidth  = "preview_width"
	KeyBatchSize     = "batch_size"
	KeyProgressEvery = "progress_every"
	KeyDebounce      = "debounce_delay"
	KeyPollInterval  = "poll_interval"
	KeyStallTimeout  = "stall_timeout"
	KeySourceOnly    = "source_only"
	KeyIncludeBinary = "include_binary"
	KeySort          = "sort"
	KeyIgnoreDirs    = "ignore_dirs"
	KeySourceExts    = "source_exts"
	KeyTextExts      = "text_exts"
	KeyWatch         = "watch"
	KeyLogFile       = "log_file"
	KeyVerbose       = "verbose"
)

type Config struct {
	Root          string        `mapstructure:"root"           yaml:"root"`
	MaxMatches    int           `mapstructure:"max_matches"    yaml:"max_matches"`
	MaxFileSize   int64         `mapstructure:"max_file_size"  yaml:"max_file_size"`
	MaxCandidates int           `mapstructure:"max_candidates" yaml:"max_candidates"`
	PreviewWidth  int           `mapstructure:"preview_width"  yaml:"preview_width"`
	BatchSize     int           `mapstructure:"batch_size"     yaml:"batch_size"`
	ProgressEvery int           `mapstructure:"progress_every" yaml:"progress_every"`
	DebounceDelay time.Duration `mapstructure:"debounce_delay" yaml:"debounce_delay"`
	PollInterval  time.Duration `mapstructure:"poll_interval"  yaml:"poll_interval"`
	StallTimeout  time.Duration `mapstructure:"stall_timeout"  yaml:"stall_timeout"`
	SourceOnly    bool          `mapstructure:"source_only"    yaml:"source_only"`
	IncludeBinary bool          `mapstructure:"include_binary" yaml:"include_binary"`
	Sort          string        `mapstructure:"sort"           yaml:"sort"`
	IgnoreDirs    []string      `mapstructure:"ignore_dirs"    yaml:"ignore_dirs"`
	SourceExts    []string      `mapstructure:"source_exts"    yaml:"source_exts"`
	TextExts      []string      `mapstructure:"text_exts"      yaml:"text_exts"`
	Watch         bool          `mapstructure:"watch"          yaml:"watch"`
	LogFile       string        `mapstructure:"log_file"       yaml:"log_file"`
	Verbose       bool          `mapstructure:"verbose"        yaml:"verbose"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Root:          ".",
		MaxMatches:    1000,
		MaxFileSize:   2 << 20,
		MaxCandidates: 200000,
		PreviewWidth:  120,
		BatchSize:     10,
		ProgressEvery: 20,
		DebounceDelay: 300 * time.Millisecond,
		PollInterval:  50 * time.Millisecond,
		StallTimeout:  30 * time.Second,
		SourceOnly:    true,
		Sort:          model.SortByName.String(),
		IgnoreDirs: []string{
			".git", ".hg", ".svn", ".venv", ".mypy_cache", "__pycache__", ".ipynb_checkpoints",
		},
		SourceExts: []string{".py", ".ipynb"},
		TextExts: []string{
			".py", ".ipynb", ".txt", ".md", ".rst", ".json", ".yaml", ".yml", ".toml",
			".ini", ".cfg", ".csv", ".tsv", ".sh", ".bash", ".zsh", ".html", ".css",
			".js", ".ts", ".sql", ".xml", ".go", ".c", ".h", ".cpp", ".java", ".rs",
		},
		Watch: true,
	}
}

// SetDefaults registers every default with v so environment variables
// and Unmarshal see all keys.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyRoot, d.Root)
	v.SetDefault(KeyMaxMatches, d.MaxMatches)
	v.SetDefault(KeyMaxFileSize, d.MaxFileSize)
	v.SetDefault(KeyMaxCandidates, d.MaxCandidates)
	v.SetDefault(KeyPreviewWidth, d.PreviewWidth)
	v.SetDefault(KeyBatchSize, d.BatchSize)
	v.SetDefault(KeyProgressEvery, d.ProgressEvery)
	v.SetDefault(KeyDebounce, d.DebounceDelay)
	v.SetDefault(KeyPollInterval, d.PollInterval)
	v.SetDefault(KeyStallTimeout, d.StallTimeout)
	v.SetDefault(KeySourceOnly, d.SourceOnly)
	v.SetDefault(KeyIncludeBinary, d.IncludeBinary)
	v.SetDefault(KeySort, d.Sort)
	v.SetDefault(KeyIgnoreDirs, d.IgnoreDirs)
	v.SetDefault(KeySourceExts, d.SourceExts)
	v.SetDefault(KeyTextExts, d.TextExts)
	v.SetDefault(KeyWatch, d.Watch)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyVerbose, d.Verbose)
}

// DefaultPath is $XDG_CONFIG_HOME/scopefind/config.yaml, or the platform
// equivalent. It returns "" when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, fileName)
}

// NewViper returns a viper instance with defaults and environment
// binding. configFile, when set, must exist; otherwise the default path is
// read if present.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := configFile
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return v, nil
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return v, nil
}

// Load decodes v into a Config and resolves the root to an absolute path.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if c.Root == "" {
		c.Root = "."
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return Config{}, fmt.Errorf("resolving %s: %w", c.Root, err)
	}
	c.Root = abs
	return c, nil
}

func (c Config) Validate() error {
	info, err := os.Stat(c.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, c.Root)
	}
	switch {
	case c.MaxMatches <= 0:
		return fmt.Errorf("max_matches must be positive, got %d", c.MaxMatches)
	case c.MaxFileSize <= 0:
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	case c.MaxCandidates < 0:
		return fmt.Errorf("max_candidates must not be negative, got %d", c.MaxCandidates)
	case c.PreviewWidth < 8:
		return fmt.Errorf("preview_width must be at least 8, got %d", c.PreviewWidth)
	case c.BatchSize <= 0 || c.ProgressEvery <= 0:
		return fmt.Errorf("batch_size and progress_every must be positive")
	case c.DebounceDelay <= 0 || c.PollInterval <= 0:
		return fmt.Errorf("debounce_delay and poll_interval must be positive")
	}
	switch strings.ToLower(c.Sort) {
	case "name", "date", "size":
	default:
		return fmt.Errorf("sort must be name, date or size, got %q", c.Sort)
	}
	return nil
}

// SortKey returns the configured initial sort key.
func (c Config) SortKey() model.SortKey {
	return model.ParseSortKey(c.Sort)
}

// Filter builds the eligibility snapshot for the given toggle states.
func (c Config) Filter(sourceOnly, includeBinary bool) model.Filter {
	return model.Filter{
		Root:          c.Root,
		SourceOnly:    sourceOnly,
		IncludeBinary: includeBinary,
		IgnoreDirs:    c.IgnoreDirs,
		SourceExts:    c.SourceExts,
		TextExts:      c.TextExts,
		MaxFileSize:   c.MaxFileSize,
		MaxMatches:    c.MaxMatches,
		MaxCandidates: c.MaxCandidates,
	}
}

// Dump writes c as YAML.
func (c Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
