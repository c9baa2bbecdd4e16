package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variables overriding configuration keys,
// e.g. JIRA_MERGE_GATE_JIRA_BASE_URL for jira.base_url
const EnvPrefix = "JIRA_MERGE_GATE"

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// AuthScheme selects how the API token is presented to Jira
type AuthScheme string

const (
	// AuthSchemeBearer sends the token as a personal access token
	AuthSchemeBearer AuthScheme = "bearer"
	// AuthSchemeBasic sends base64(username:token), or the token itself when no username is set
	AuthSchemeBasic AuthScheme = "basic"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// String returns the string representation of LogFormat
func (f LogFormat) String() string {
	return string(f)
}

// String returns the string representation of AuthScheme
func (a AuthScheme) String() string {
	return string(a)
}

// IsValid checks if the LogLevel is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// IsValid checks if the LogFormat is valid
func (f LogFormat) IsValid() bool {
	switch f {
	case LogFormatConsole, LogFormatJSON:
		return true
	default:
		return false
	}
}

// IsValid checks if the AuthScheme is valid
func (a AuthScheme) IsValid() bool {
	switch a {
	case AuthSchemeBearer, AuthSchemeBasic:
		return true
	default:
		return false
	}
}

// UnmarshalYAML implements custom unmarshaling for LogLevel
func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	level := LogLevel(strings.ToLower(str))
	if !level.IsValid() {
		return fmt.Errorf("invalid log level: %s. Valid options are: debug, info, warn, error", str)
	}

	*l = level
	return nil
}

// UnmarshalYAML implements custom unmarshaling for LogFormat
func (f *LogFormat) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	format := LogFormat(strings.ToLower(str))
	if !format.IsValid() {
		return fmt.Errorf("invalid log format: %s. Valid options are: console, json", str)
	}

	*f = format
	return nil
}

// JiraConfig holds the connection settings for the Jira instance
type JiraConfig struct {
	BaseURL        string     `yaml:"base_url" mapstructure:"base_url"`
	Username       string     `yaml:"username,omitempty" mapstructure:"username"`
	APIToken       string     `yaml:"api_token" mapstructure:"api_token"`
	AuthScheme     AuthScheme `yaml:"auth_scheme" mapstructure:"auth_scheme" default:"bearer"`
	APIVersion     string     `yaml:"api_version" mapstructure:"api_version" default:"3"`
	TimeoutSeconds int        `yaml:"timeout_seconds" mapstructure:"timeout_seconds" default:"10"`
}

// ValidationConfig controls status validation of the referenced issue
type ValidationConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled" default:"false"`
	// AllowedStatuses are matched exactly and case-sensitively against the issue status
	AllowedStatuses []string `yaml:"allowed_statuses" mapstructure:"allowed_statuses"`
}

// GateConfig controls where the gate reads text from and which keys it checks
type GateConfig struct {
	Source          TextSource   `yaml:"source" mapstructure:"source" default:"auto"`
	KeySelection    KeySelection `yaml:"key_selection" mapstructure:"key_selection" default:"last"`
	CacheTTLSeconds int          `yaml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds" default:"300"`
}

// ReportConfig controls the GitHub job summary and the optional HTML report
type ReportConfig struct {
	StepSummary bool   `yaml:"step_summary" mapstructure:"step_summary" default:"true"`
	HTMLPath    string `yaml:"html_path,omitempty" mapstructure:"html_path"`
}

// Config represents the application configuration
type Config struct {
	// Logging configuration
	Logging struct {
		Level  LogLevel  `yaml:"level" mapstructure:"level" default:"info"`
		Format LogFormat `yaml:"format" mapstructure:"format" default:"console"`
	} `yaml:"logging" mapstructure:"logging"`

	Jira       JiraConfig       `yaml:"jira" mapstructure:"jira"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Gate       GateConfig       `yaml:"gate" mapstructure:"gate"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
}

// actionInputs maps configuration keys to the environment variables GitHub Actions
// sets for the action's inputs. Input names keep their hyphens.
var actionInputs = map[string][]string{
	"jira.base_url":               {"INPUT_JIRA-BASE-URL", "JIRA_BASE_URL"},
	"jira.api_token":              {"INPUT_JIRA-TOKEN", "JIRA_TOKEN"},
	"jira.username":               {"INPUT_JIRA-USERNAME"},
	"jira.auth_scheme":            {"INPUT_JIRA-AUTH-SCHEME"},
	"jira.api_version":            {"INPUT_JIRA-API-VERSION"},
	"validation.enabled":          {"INPUT_VALIDATE_ISSUE_STATUS"},
	"validation.allowed_statuses": {"INPUT_ALLOWED_ISSUE_STATUSES"},
	"gate.key_selection":          {"INPUT_KEY_SELECTION"},
	"gate.source":                 {"INPUT_SOURCE"},
	"report.step_summary":         {"INPUT_STEP_SUMMARY"},
	"report.html_path":            {"INPUT_HTML_REPORT_PATH"},
	"logging.level":               {"INPUT_LOG_LEVEL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", LogLevelInfo.String())
	v.SetDefault("logging.format", LogFormatConsole.String())
	v.SetDefault("jira.base_url", "")
	v.SetDefault("jira.username", "")
	v.SetDefault("jira.api_token", "")
	v.SetDefault("jira.auth_scheme", AuthSchemeBearer.String())
	v.SetDefault("jira.api_version", "3")
	v.SetDefault("jira.timeout_seconds", 10)
	v.SetDefault("validation.enabled", false)
	v.SetDefault("validation.allowed_statuses", []string{})
	v.SetDefault("gate.source", TextSourceAuto.String())
	v.SetDefault("gate.key_selection", KeySelectionLast.String())
	v.SetDefault("gate.cache_ttl_seconds", 300)
	v.SetDefault("report.step_summary", true)
	v.SetDefault("report.html_path", "")
}

// LoadEnvFile loads variables from a dotenv file into the process environment without
// overriding variables that are already set. An empty path tries ".env" and ignores a
// missing file.
func LoadEnvFile(path string) error {
	if path == "" {
		_ = godotenv.Load(".env")
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration from an optional YAML file and the environment.
// Environment variables take precedence over the file.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range actionInputs {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var config Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		normalizeEnumHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&config, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	config.Jira.BaseURL = strings.TrimSuffix(config.Jira.BaseURL, "/")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// normalizeEnumHook lower-cases and trims strings decoded into the enum types so that
// "LAST" or " json" from the environment are accepted
func normalizeEnumHook() mapstructure.DecodeHookFuncType {
	enumTypes := map[reflect.Type]bool{
		reflect.TypeOf(LogLevel("")):     true,
		reflect.TypeOf(LogFormat("")):    true,
		reflect.TypeOf(AuthScheme("")):   true,
		reflect.TypeOf(TextSource("")):   true,
		reflect.TypeOf(KeySelection("")): true,
	}
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || !enumTypes[to] {
			return data, nil
		}
		return strings.ToLower(strings.TrimSpace(data.(string))), nil
	}
}

// Validate checks the configuration is complete and consistent
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateJira(); err != nil {
		return err
	}
	if err := c.validateStatusValidation(); err != nil {
		return err
	}
	return c.validateGate()
}

// validateJira ensures the Jira connection settings are usable
func (c *Config) validateJira() error {
	if c.Jira.BaseURL == "" {
		return errors.New("jira.base_url is required")
	}
	if !strings.HasPrefix(c.Jira.BaseURL, "http://") && !strings.HasPrefix(c.Jira.BaseURL, "https://") {
		return fmt.Errorf("jira.base_url must be an http(s) URL, got %q", c.Jira.BaseURL)
	}
	if c.Jira.APIToken == "" {
		return errors.New("jira.api_token is required")
	}
	if !c.Jira.AuthScheme.IsValid() {
		return fmt.Errorf("invalid jira.auth_scheme: %s. Valid options are: bearer, basic", c.Jira.AuthScheme)
	}
	if c.Jira.APIVersion != "2" && c.Jira.APIVersion != "3" {
		return fmt.Errorf("invalid jira.api_version: %s. Valid options are: 2, 3", c.Jira.APIVersion)
	}
	if c.Jira.TimeoutSeconds <= 0 {
		return errors.New("jira.timeout_seconds must be positive")
	}
	return nil
}

// validateStatusValidation ensures an allowed status list is present when enforcement is on
func (c *Config) validateStatusValidation() error {
	if c.Validation.Enabled && len(c.Validation.AllowedStatuses) == 0 {
		return errors.New("validation.allowed_statuses cannot be empty when validation.enabled is true")
	}
	return nil
}

// validateGate ensures the text source and key selection policy are known
func (c *Config) validateGate() error {
	if !c.Gate.Source.IsValid() {
		return fmt.Errorf("invalid gate.source: %s. Valid options are: auto, commit_message, pr_title, branch", c.Gate.Source)
	}
	if !c.Gate.KeySelection.IsValid() {
		return fmt.Errorf("invalid gate.key_selection: %s. Valid options are: first, last, all", c.Gate.KeySelection)
	}
	if c.Gate.CacheTTLSeconds < 0 {
		return errors.New("gate.cache_ttl_seconds cannot be negative")
	}
	return nil
}

// validateLogging ensures logging configuration is valid
func (c *Config) validateLogging() error {
	if !c.Logging.Level.IsValid() {
		return fmt.Errorf("invalid log level: %s. Valid options are: debug, info, warn, error", c.Logging.Level)
	}
	if !c.Logging.Format.IsValid() {
		return fmt.Errorf("invalid log format: %s. Valid options are: console, json", c.Logging.Format)
	}
	return nil
}

// Redacted returns a copy of the configuration with credentials masked
func (c *Config) Redacted() Config {
	out := *c
	if out.Jira.APIToken != "" {
		out.Jira.APIToken = "********"
	}
	out.Validation.AllowedStatuses = append([]string(nil), c.Validation.AllowedStatuses...)
	return out
}

// MarshalRedactedYAML renders the configuration as YAML with credentials masked
func (c *Config) MarshalRedactedYAML() ([]byte, error) {
	redacted := c.Redacted()
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}
