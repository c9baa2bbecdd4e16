package services

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"jira-merge-gate/models"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
)

// ActionsReporter reports the gate outcome to GitHub Actions: workflow commands on
// stdout and a markdown job summary
type ActionsReporter struct {
	out         io.Writer
	summaryPath string
	logger      *zap.Logger
}

// NewActionsReporter creates a reporter writing workflow commands to out. An empty
// summaryPath disables the job summary.
func NewActionsReporter(out io.Writer, summaryPath string, logger *zap.Logger) *ActionsReporter {
	return &ActionsReporter{
		out:         out,
		summaryPath: summaryPath,
		logger:      logger,
	}
}

// Fail emits an error annotation, which marks the step as failed in the UI
func (r *ActionsReporter) Fail(message string) {
	r.command("error", message)
}

// Notice emits a notice annotation
func (r *ActionsReporter) Notice(message string) {
	r.command("notice", message)
}

func (r *ActionsReporter) command(name, message string) {
	if _, err := fmt.Fprintf(r.out, "::%s::%s\n", name, escapeCommandData(message)); err != nil {
		r.logger.Error("Failed to write workflow command", zap.String("command", name), zap.Error(err))
	}
}

// escapeCommandData escapes a workflow command message the way @actions/core does
func escapeCommandData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

// WriteSummary appends the markdown report to the job summary file
func (r *ActionsReporter) WriteSummary(result *models.GateResult, gateErr error) error {
	if r.summaryPath == "" {
		return nil
	}

	f, err := os.OpenFile(r.summaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open job summary %s: %w", r.summaryPath, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Error("Failed to close job summary", zap.Error(err))
		}
	}()

	if _, err := io.WriteString(f, RenderMarkdown(result, gateErr)); err != nil {
		return fmt.Errorf("failed to write job summary: %w", err)
	}
	return nil
}

// WriteHTMLReport renders the report to HTML and writes it to path
func (r *ActionsReporter) WriteHTMLReport(path string, result *models.GateResult, gateErr error) error {
	page, err := RenderHTML(result, gateErr)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return fmt.Errorf("failed to write HTML report %s: %w", path, err)
	}
	r.logger.Info("Wrote HTML report", zap.String("path", path))
	return nil
}

// RenderMarkdown renders the gate outcome as GitHub flavored markdown
func RenderMarkdown(result *models.GateResult, gateErr error) string {
	var b strings.Builder

	if gateErr == nil && result != nil && result.Passed {
		b.WriteString("## Jira merge gate passed\n\n")
	} else {
		b.WriteString("## Jira merge gate failed\n\n")
		if gateErr != nil {
			fmt.Fprintf(&b, "> %s\n\n", FailureMessage(gateErr))
		}
	}

	if result == nil {
		return b.String()
	}

	fence := "```"
	for strings.Contains(result.Text, fence) {
		fence += "`"
	}
	fmt.Fprintf(&b, "**Scanned text**\n\n%s\n%s\n%s\n\n", fence, result.Text, fence)

	if len(result.Keys) > 0 {
		fmt.Fprintf(&b, "**Issue keys found:** %s\n\n", strings.Join(result.Keys.Strings(), ", "))
	}
	if len(result.Selected) > 0 {
		fmt.Fprintf(&b, "**Checked:** %s\n\n", strings.Join(result.Selected.Strings(), ", "))
	}

	if len(result.Issues) == 0 {
		return b.String()
	}

	b.WriteString("| Key | Summary | Type | Status | Estimate | Labels |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, issue := range result.Issues {
		labels := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			labels = append(labels, fmt.Sprintf("[%s](%s)", escapeCell(label.Name), label.URL))
		}
		fmt.Fprintf(&b, "| [%s](%s) | %s | %s | %s | %s | %s |\n",
			issue.Key, issue.URL,
			escapeCell(issue.Summary),
			escapeCell(issue.Type.Name),
			escapeCell(issue.Status),
			escapeCell(issue.Estimate),
			strings.Join(labels, " "))
	}
	b.WriteString("\n")

	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderHTML renders the gate outcome as a standalone HTML fragment
func RenderHTML(result *models.GateResult, gateErr error) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(result, gateErr)), &buf); err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return buf.Bytes(), nil
}
