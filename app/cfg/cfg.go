package cfg

import (
	"cmp"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	BaseURL   string `long:"base-url" env:"BASE_URL" default:"https://story-api.dicoding.dev/v1" description:"Base URL of the story service"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Story App/1.0" description:"User agent string for HTTP requests"`

	DBPath    string `long:"db-path" env:"DB_PATH" default:"./story-app.db" description:"Path to the SQLite database file"`
	PrefsPath string `long:"prefs-path" env:"PREFS_PATH" default:"./story-app-prefs.db" description:"Path to the preference store file"`

	PageSize int `long:"page-size" env:"PAGE_SIZE" default:"30" description:"Number of stories per remote page"`

	ConfigFile string `long:"config" env:"CONFIG_FILE" description:"Path to an optional YAML configuration file"`
	Debug      bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// fileCfg mirrors rawCfg for the optional YAML configuration file. Pointer
// fields distinguish "absent" from zero values.
type fileCfg struct {
	BaseURL   *string `yaml:"base_url"`
	UserAgent *string `yaml:"user_agent"`
	DBPath    *string `yaml:"db_path"`
	PrefsPath *string `yaml:"prefs_path"`
	PageSize  *int    `yaml:"page_size"`
	Debug     *bool   `yaml:"debug"`
}

var globalCfg *Cfg

// Load parses configuration with flags and environment variables taking
// precedence over the optional YAML file, which takes precedence over
// defaults. The second return value holds the remaining positional
// arguments. Returns (nil, nil, nil) when help was requested.
func Load() (*Cfg, []string, error) {
	cfg, rest, err := load(os.Args[1:])
	if err != nil || cfg == nil {
		return cfg, rest, err
	}

	globalCfg = cfg

	return cfg, rest, nil
}

func load(args []string) (*Cfg, []string, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil, nil
			}
		}
		return nil, nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.ConfigFile != "" {
		if err := applyConfigFile(parser, &raw); err != nil {
			return nil, nil, err
		}
	}

	if raw.PageSize < 1 {
		return nil, nil, fmt.Errorf("page size must be positive, got %d", raw.PageSize)
	}

	return &Cfg{
		BaseURL:   raw.BaseURL,
		UserAgent: raw.UserAgent,
		DBPath:    raw.DBPath,
		PrefsPath: raw.PrefsPath,
		PageSize:  raw.PageSize,
		Debug:     raw.Debug,
		Version:   GetVersion(),
	}, rest, nil
}

// applyConfigFile fills in file values for options not explicitly set on the
// command line or environment.
func applyConfigFile(parser *flags.Parser, raw *rawCfg) error {
	data, err := os.ReadFile(raw.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	var file fileCfg
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse configuration file: %w", err)
	}

	isSet := func(name string) bool {
		opt := parser.FindOptionByLongName(name)
		return opt != nil && opt.IsSet() && !opt.IsSetDefault()
	}

	if file.BaseURL != nil && !isSet("base-url") {
		raw.BaseURL = *file.BaseURL
	}
	if file.UserAgent != nil && !isSet("user-agent") {
		raw.UserAgent = *file.UserAgent
	}
	if file.DBPath != nil && !isSet("db-path") {
		raw.DBPath = *file.DBPath
	}
	if file.PrefsPath != nil && !isSet("prefs-path") {
		raw.PrefsPath = *file.PrefsPath
	}
	if file.PageSize != nil && !isSet("page-size") {
		raw.PageSize = *file.PageSize
	}
	if file.Debug != nil && !isSet("debug") {
		raw.Debug = *file.Debug
	}

	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
