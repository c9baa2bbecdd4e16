package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jira-merge-gate/models"
	"jira-merge-gate/services"
)

// checkOptions holds the flags of the check command
type checkOptions struct {
	texts     []string
	sources   []string
	eventPath string
	key       string
}

var (
	configPath  string
	envFilePath string
	checkOpts   checkOptions
)

// rootCmd is the base command; without a subcommand it runs the check.
var rootCmd = &cobra.Command{
	Use:   "jira-merge-gate",
	Short: "Block merges whose commit, title or branch does not reference a valid Jira issue",
	Long: `jira-merge-gate scans a commit message, pull request title or branch name for
Jira issue keys (e.g. ABC-123), looks the selected key up in Jira and, when status
validation is enabled, checks the issue is in one of the allowed statuses.

It is meant to run as a step in a GitHub Actions merge_group or pull_request job and
exits non-zero when the merge should be blocked.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return models.LoadEnvFile(envFilePath)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, &checkOpts)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the triggering event (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, &checkOpts)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "Print the Jira issue keys found in text (stdin when no arguments)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}

		for _, key := range services.ExtractIssueKeys(text) {
			fmt.Fprintln(cmd.OutOrStdout(), key.String())
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with credentials redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := models.LoadConfig(configPath)
		if err != nil {
			return err
		}
		data, err := config.MarshalRedactedYAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of jira-merge-gate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jira-merge-gate %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (optional, environment variables are always read)")
	rootCmd.PersistentFlags().StringVar(&envFilePath, "env-file", "", "Dotenv file to load before reading the environment (default .env when present)")

	for _, cmd := range []*cobra.Command{rootCmd, checkCmd} {
		cmd.Flags().StringArrayVar(&checkOpts.texts, "text", nil, "Text to check instead of reading the GitHub event payload (repeatable, every text must pass)")
		cmd.Flags().StringArrayVar(&checkOpts.sources, "source", nil, "Event text source to check, overriding gate.source (repeatable: auto, commit_message, pr_title, branch)")
		cmd.Flags().StringVar(&checkOpts.eventPath, "event-path", "", "Event payload path (default $GITHUB_EVENT_PATH)")
		cmd.Flags().StringVar(&checkOpts.key, "key", "", "Check this issue key directly, skipping extraction")
	}

	rootCmd.AddCommand(checkCmd, extractCmd, configCmd, versionCmd)
}

// runCheck loads configuration, resolves the text, runs the gate and reports the outcome
func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	reporter := services.NewActionsReporter(cmd.OutOrStdout(), "", Logger)

	config, err := models.LoadConfig(configPath)
	if err != nil {
		reporter.Fail(fmt.Sprintf("Failed to load configuration: %v", err))
		return err
	}

	InitLogger(config.Logging.Level, config.Logging.Format)

	summaryPath := ""
	if config.Report.StepSummary {
		summaryPath = os.Getenv("GITHUB_STEP_SUMMARY")
	}
	reporter = services.NewActionsReporter(cmd.OutOrStdout(), summaryPath, Logger)

	jiraService := services.NewCachingJiraService(
		services.NewJiraService(config, Logger),
		time.Duration(config.Gate.CacheTTLSeconds)*time.Second,
	)
	gate := services.NewMergeGateService(jiraService, config, Logger)

	var results []*models.GateResult
	var gateErr error
	if opts.key != "" {
		key, err := models.ParseIssueKey(opts.key)
		if err != nil {
			reporter.Fail(err.Error())
			return err
		}
		var result *models.GateResult
		result, gateErr = gate.CheckKey(cmd.Context(), key)
		results = append(results, result)
	} else {
		texts, err := resolveTexts(opts, config)
		if err != nil {
			reporter.Fail(err.Error())
			return err
		}
		// the cache spares a second lookup when several texts name the same key
		for _, text := range texts {
			var result *models.GateResult
			result, gateErr = gate.Check(cmd.Context(), text)
			results = append(results, result)
			if gateErr != nil {
				break
			}
		}
	}

	last := results[len(results)-1]
	for i, result := range results {
		var resultErr error
		if i == len(results)-1 {
			resultErr = gateErr
		}
		if err := reporter.WriteSummary(result, resultErr); err != nil {
			Logger.Warn("Failed to write job summary", zap.Error(err))
		}
	}
	if config.Report.HTMLPath != "" {
		if err := reporter.WriteHTMLReport(config.Report.HTMLPath, last, gateErr); err != nil {
			Logger.Warn("Failed to write HTML report", zap.Error(err))
		}
	}

	if gateErr != nil {
		Logger.Error("Merge gate failed", zap.Error(gateErr))
		reporter.Fail(services.FailureMessage(gateErr))
		return gateErr
	}

	var accepted models.IssueKeys
	for _, result := range results {
		accepted = append(accepted, result.Selected...)
	}
	reporter.Notice(fmt.Sprintf("Jira issue %s accepted", strings.Join(accepted.Unique().Strings(), ", ")))
	return nil
}

// resolveTexts returns the --text flags, or the text of each configured source read from
// the event payload
func resolveTexts(opts *checkOptions, config *models.Config) ([]string, error) {
	if len(opts.texts) > 0 {
		return opts.texts, nil
	}

	eventPath := opts.eventPath
	if eventPath == "" {
		eventPath = os.Getenv("GITHUB_EVENT_PATH")
	}
	if eventPath == "" {
		return nil, errors.New("no --text given and GITHUB_EVENT_PATH is not set")
	}

	event, err := services.LoadGitHubEvent(eventPath)
	if err != nil {
		return nil, err
	}

	sources := []models.TextSource{config.Gate.Source}
	if len(opts.sources) > 0 {
		sources = sources[:0]
		for _, s := range opts.sources {
			sources = append(sources, models.TextSource(strings.ToLower(strings.TrimSpace(s))))
		}
	}

	texts := make([]string, 0, len(sources))
	for _, source := range sources {
		text, err := services.ResolveLintText(event, source, os.Getenv("GITHUB_HEAD_REF"))
		if err != nil {
			return nil, err
		}
		Logger.Info("Resolved text to check",
			zap.String("source", source.String()),
			zap.String("event_path", eventPath))
		texts = append(texts, text)
	}
	return texts, nil
}
