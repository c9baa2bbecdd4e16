package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// writeConfigFile writes content to a temporary YAML file and returns its path
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// getValidConfig returns a configuration that passes validation
func getValidConfig() Config {
	config := Config{}
	config.Logging.Level = LogLevelInfo
	config.Logging.Format = LogFormatConsole
	config.Jira = JiraConfig{
		BaseURL:        "https://jira.example.com",
		APIToken:       "token",
		AuthScheme:     AuthSchemeBearer,
		APIVersion:     "3",
		TimeoutSeconds: 10,
	}
	config.Gate = GateConfig{
		Source:          TextSourceAuto,
		KeySelection:    KeySelectionLast,
		CacheTTLSeconds: 300,
	}
	return config
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  format: json
jira:
  base_url: https://example.atlassian.net/
  username: bot@example.com
  api_token: secret
  auth_scheme: basic
  api_version: "2"
  timeout_seconds: 30
validation:
  enabled: true
  allowed_statuses:
    - In Test
    - In Progress
gate:
  source: branch
  key_selection: all
  cache_ttl_seconds: 0
report:
  step_summary: false
  html_path: report.html
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Logging.Level != LogLevelDebug || config.Logging.Format != LogFormatJSON {
		t.Errorf("Logging = %+v, want debug/json", config.Logging)
	}
	if config.Jira.BaseURL != "https://example.atlassian.net" {
		t.Errorf("Jira.BaseURL = %q, want trailing slash stripped", config.Jira.BaseURL)
	}
	if config.Jira.Username != "bot@example.com" || config.Jira.APIToken != "secret" {
		t.Errorf("Jira credentials = %q/%q", config.Jira.Username, config.Jira.APIToken)
	}
	if config.Jira.AuthScheme != AuthSchemeBasic || config.Jira.APIVersion != "2" || config.Jira.TimeoutSeconds != 30 {
		t.Errorf("Jira = %+v", config.Jira)
	}
	if !config.Validation.Enabled {
		t.Error("Validation.Enabled = false, want true")
	}
	if strings.Join(config.Validation.AllowedStatuses, "|") != "In Test|In Progress" {
		t.Errorf("Validation.AllowedStatuses = %v", config.Validation.AllowedStatuses)
	}
	if config.Gate.Source != TextSourceBranch || config.Gate.KeySelection != KeySelectionAll || config.Gate.CacheTTLSeconds != 0 {
		t.Errorf("Gate = %+v", config.Gate)
	}
	if config.Report.StepSummary || config.Report.HTMLPath != "report.html" {
		t.Errorf("Report = %+v", config.Report)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JIRA_BASE_URL", "https://jira.example.com")
	t.Setenv("JIRA_TOKEN", "token")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Logging.Level != LogLevelInfo || config.Logging.Format != LogFormatConsole {
		t.Errorf("Logging = %+v, want info/console", config.Logging)
	}
	if config.Jira.AuthScheme != AuthSchemeBearer || config.Jira.APIVersion != "3" || config.Jira.TimeoutSeconds != 10 {
		t.Errorf("Jira = %+v", config.Jira)
	}
	if config.Validation.Enabled || len(config.Validation.AllowedStatuses) != 0 {
		t.Errorf("Validation = %+v, want disabled with no statuses", config.Validation)
	}
	if config.Gate.Source != TextSourceAuto || config.Gate.KeySelection != KeySelectionLast || config.Gate.CacheTTLSeconds != 300 {
		t.Errorf("Gate = %+v", config.Gate)
	}
	if !config.Report.StepSummary || config.Report.HTMLPath != "" {
		t.Errorf("Report = %+v", config.Report)
	}
}

func TestLoadConfig_ActionInputs(t *testing.T) {
	t.Setenv("INPUT_JIRA-BASE-URL", "https://jira.example.com/")
	t.Setenv("INPUT_JIRA-TOKEN", "input-token")
	t.Setenv("INPUT_JIRA-AUTH-SCHEME", "Basic")
	t.Setenv("INPUT_VALIDATE_ISSUE_STATUS", "true")
	t.Setenv("INPUT_ALLOWED_ISSUE_STATUSES", "In Test,In Progress")
	t.Setenv("INPUT_KEY_SELECTION", "FIRST")
	t.Setenv("INPUT_SOURCE", "pr_title")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Jira.BaseURL != "https://jira.example.com" {
		t.Errorf("Jira.BaseURL = %q", config.Jira.BaseURL)
	}
	if config.Jira.APIToken != "input-token" {
		t.Errorf("Jira.APIToken = %q", config.Jira.APIToken)
	}
	if config.Jira.AuthScheme != AuthSchemeBasic {
		t.Errorf("Jira.AuthScheme = %q, want basic", config.Jira.AuthScheme)
	}
	if !config.Validation.Enabled {
		t.Error("Validation.Enabled = false, want true")
	}
	if len(config.Validation.AllowedStatuses) != 2 ||
		config.Validation.AllowedStatuses[0] != "In Test" ||
		config.Validation.AllowedStatuses[1] != "In Progress" {
		t.Errorf("Validation.AllowedStatuses = %q", config.Validation.AllowedStatuses)
	}
	if config.Gate.KeySelection != KeySelectionFirst {
		t.Errorf("Gate.KeySelection = %q, want first", config.Gate.KeySelection)
	}
	if config.Gate.Source != TextSourcePRTitle {
		t.Errorf("Gate.Source = %q, want pr_title", config.Gate.Source)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
jira:
  base_url: https://file.example.com
  api_token: file-token
gate:
  key_selection: first
`)
	t.Setenv("JIRA_MERGE_GATE_JIRA_API_TOKEN", "env-token")
	t.Setenv("JIRA_MERGE_GATE_GATE_KEY_SELECTION", "LAST")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Jira.BaseURL != "https://file.example.com" {
		t.Errorf("Jira.BaseURL = %q, want value from file", config.Jira.BaseURL)
	}
	if config.Jira.APIToken != "env-token" {
		t.Errorf("Jira.APIToken = %q, want env-token", config.Jira.APIToken)
	}
	if config.Gate.KeySelection != KeySelectionLast {
		t.Errorf("Gate.KeySelection = %q, want last", config.Gate.KeySelection)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing base url",
			content: "jira:\n  api_token: token\n",
			wantErr: "jira.base_url is required",
		},
		{
			name:    "enforcement without statuses",
			content: "jira:\n  base_url: https://jira.example.com\n  api_token: token\nvalidation:\n  enabled: true\n",
			wantErr: "validation.allowed_statuses cannot be empty",
		},
		{
			name:    "unknown key selection",
			content: "jira:\n  base_url: https://jira.example.com\n  api_token: token\ngate:\n  key_selection: middle\n",
			wantErr: "invalid gate.key_selection: middle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() with missing file should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing token", mutate: func(c *Config) { c.Jira.APIToken = "" }, wantErr: true},
		{name: "base url without scheme", mutate: func(c *Config) { c.Jira.BaseURL = "jira.example.com" }, wantErr: true},
		{name: "plain http base url", mutate: func(c *Config) { c.Jira.BaseURL = "http://jira.internal" }, wantErr: false},
		{name: "unknown auth scheme", mutate: func(c *Config) { c.Jira.AuthScheme = "oauth" }, wantErr: true},
		{name: "unsupported api version", mutate: func(c *Config) { c.Jira.APIVersion = "4" }, wantErr: true},
		{name: "api version 2", mutate: func(c *Config) { c.Jira.APIVersion = "2" }, wantErr: false},
		{name: "zero timeout", mutate: func(c *Config) { c.Jira.TimeoutSeconds = 0 }, wantErr: true},
		{name: "invalid log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: true},
		{name: "invalid log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.Gate.Source = "body" }, wantErr: true},
		{name: "negative cache ttl", mutate: func(c *Config) { c.Gate.CacheTTLSeconds = -1 }, wantErr: true},
		{
			name: "enforcement with statuses",
			mutate: func(c *Config) {
				c.Validation.Enabled = true
				c.Validation.AllowedStatuses = []string{"In Test"}
			},
			wantErr: false,
		},
		{name: "enforcement without statuses", mutate: func(c *Config) { c.Validation.Enabled = true }, wantErr: true},
		{name: "statuses without enforcement", mutate: func(c *Config) { c.Validation.AllowedStatuses = []string{"Done"} }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := getValidConfig()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogLevel_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{input: "level: debug", want: LogLevelDebug},
		{input: "level: WARN", want: LogLevelWarn},
		{input: "level: verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out struct {
				Level LogLevel `yaml:"level"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out.Level != tt.want {
				t.Errorf("Level = %q, want %q", out.Level, tt.want)
			}
		})
	}
}

func TestLogFormat_UnmarshalYAML(t *testing.T) {
	var out struct {
		Format LogFormat `yaml:"format"`
	}
	if err := yaml.Unmarshal([]byte("format: JSON"), &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Format != LogFormatJSON {
		t.Errorf("Format = %q, want json", out.Format)
	}
	if err := yaml.Unmarshal([]byte("format: logfmt"), &out); err == nil {
		t.Error("Unmarshal() of unknown format should fail")
	}
}

func TestConfig_Redacted(t *testing.T) {
	config := getValidConfig()
	config.Jira.APIToken = "super-secret"
	config.Validation.AllowedStatuses = []string{"In Test"}

	redacted := config.Redacted()
	redacted.Validation.AllowedStatuses[0] = "changed"

	if redacted.Jira.APIToken != "********" {
		t.Errorf("Redacted token = %q", redacted.Jira.APIToken)
	}
	if config.Jira.APIToken != "super-secret" || config.Validation.AllowedStatuses[0] != "In Test" {
		t.Error("Redacted() must not modify the original configuration")
	}

	data, err := config.MarshalRedactedYAML()
	if err != nil {
		t.Fatalf("MarshalRedactedYAML() error = %v", err)
	}
	out := string(data)
	if strings.Contains(out, "super-secret") {
		t.Errorf("redacted YAML leaks the token:\n%s", out)
	}
	for _, want := range []string{"********", "base_url: https://jira.example.com", "key_selection: last", "- In Test"} {
		if !strings.Contains(out, want) {
			t.Errorf("redacted YAML missing %q:\n%s", want, out)
		}
	}

	var roundTrip Config
	if err := yaml.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("redacted YAML does not parse: %v", err)
	}
	if roundTrip.Gate.KeySelection != KeySelectionLast {
		t.Errorf("KeySelection = %q after round trip", roundTrip.Gate.KeySelection)
	}
}
