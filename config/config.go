package config

import (
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/configor"
)

const (
	EngineRod  = "rod"
	EngineHTTP = "http"
)

// Config - Application configuration
type Config struct {
	Log struct {
		Debug bool   `yaml:"debug" default:"false" env:"LOG_DEBUG"`
		Path  string `yaml:"path" env:"LOG_PATH"` // empty = stderr
	} `yaml:"log"`

	Check struct {
		InputPath         string `yaml:"input_path" default:"./data/url_redirections.xlsx" env:"REDIRECT_INPUT_PATH"`
		Sheet             string `yaml:"sheet" env:"REDIRECT_SHEET"` // empty = first sheet
		NavigationTimeout int    `yaml:"navigation_timeout" default:"60" env:"REDIRECT_NAVIGATION_TIMEOUT"` // seconds
		RunTimeout        int    `yaml:"run_timeout" default:"3600" env:"REDIRECT_RUN_TIMEOUT"`             // seconds, 0 = unbounded
		HeadingTag        string `yaml:"heading_tag" default:"h1" env:"REDIRECT_HEADING_TAG"`
		NotFoundPattern   string `yaml:"not_found_pattern" default:"Page Not Found|Error 404|404 Not Found" env:"REDIRECT_NOT_FOUND_PATTERN"`
	} `yaml:"check"`

	Browser struct {
		Engine     string `yaml:"engine" default:"rod" env:"BROWSER_ENGINE"`
		Show       bool   `yaml:"show" default:"false" env:"BROWSER_SHOW"`
		Bin        string `yaml:"bin" env:"BROWSER_BIN"`
		ControlURL string `yaml:"control_url" env:"BROWSER_CONTROL_URL"`
		NoSandbox  bool   `yaml:"no_sandbox" default:"false" env:"BROWSER_NO_SANDBOX"`
		UserAgent  string `yaml:"user_agent" env:"BROWSER_USER_AGENT"` // empty = engine default
	} `yaml:"browser"`

	Report struct {
		Dir          string `yaml:"dir" default:"./reports" env:"REPORT_DIR"`
		TemplatePath string `yaml:"template_path" default:"./templates/report.html.tmpl" env:"REPORT_TEMPLATE_PATH"`
		FilePrefix   string `yaml:"file_prefix" default:"redirection_report_" env:"REPORT_FILE_PREFIX"`
		Markdown     bool   `yaml:"markdown" default:"false" env:"REPORT_MARKDOWN"`
	} `yaml:"report"`
}

// LoadConfig - Load configuration file. An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	files := []string{}
	if path != "" {
		files = append(files, path)
	}
	err := configor.New(&configor.Config{
		Debug:      false,
		Verbose:    false,
		Silent:     true,
		AutoReload: false,
	}).Load(cfg, files...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config %q", path)
	}
	return cfg, nil
}

// Validate checks values configor cannot express as defaults.
func (c *Config) Validate() error {
	switch c.Browser.Engine {
	case EngineRod, EngineHTTP:
	default:
		return errors.Newf("unknown browser engine %q (want %q or %q)", c.Browser.Engine, EngineRod, EngineHTTP)
	}
	if c.Check.NavigationTimeout <= 0 {
		return errors.Newf("navigation_timeout must be positive, got %d", c.Check.NavigationTimeout)
	}
	if c.Check.RunTimeout < 0 {
		return errors.Newf("run_timeout must not be negative, got %d", c.Check.RunTimeout)
	}
	if c.Check.InputPath == "" {
		return errors.New("input_path is required")
	}
	if _, err := c.NotFoundRegexp(); err != nil {
		return err
	}
	return nil
}

// NotFoundRegexp compiles the not-found heading pattern case-insensitively.
func (c *Config) NotFoundRegexp() (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + c.Check.NotFoundPattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid not_found_pattern %q", c.Check.NotFoundPattern)
	}
	return re, nil
}
