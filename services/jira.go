package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"jira-merge-gate/models"
)

const (
	// Retry configuration constants
	maxRetries              = 2
	defaultRetryWaitSeconds = 5
	maxRetryWaitSeconds     = 60 // Cap at 1 minute to prevent excessive waits

	// Response body truncation for logging and errors
	maxBodyLogLength   = 500 // Max chars to log in debug
	maxBodyErrorLength = 200 // Max chars to include in error messages

	defaultAPIVersion = "3"

	// ticketFields are the only fields requested; customfield_10016 holds story points on Jira Cloud
	ticketFields = "project,summary,issuetype,labels,status,customfield_10016"
)

// JiraService defines the interface for looking up issues in Jira
type JiraService interface {
	// GetTicket fetches a ticket from Jira
	GetTicket(ctx context.Context, key string) (*models.JiraTicketResponse, error)

	// GetTicketDetails fetches a ticket and maps it to the details the gate reports on
	GetTicketDetails(ctx context.Context, key string) (*models.JiraDetails, error)
}

// JiraServiceImpl implements the JiraService interface
type JiraServiceImpl struct {
	config  *models.Config
	client  *http.Client
	logger  *zap.Logger
	sleepFn func(time.Duration) <-chan time.Time // Returns a channel for select-based waiting
}

// NewJiraService creates a new JiraService with production defaults
func NewJiraService(config *models.Config, logger *zap.Logger) JiraService {
	return NewJiraServiceForTest(config, logger, time.After)
}

// NewJiraServiceForTest creates a new JiraService with a custom sleep function for testing
func NewJiraServiceForTest(config *models.Config, logger *zap.Logger, sleepFn func(time.Duration) <-chan time.Time) *JiraServiceImpl {
	return &JiraServiceImpl{
		config:  config,
		client:  &http.Client{Timeout: time.Duration(config.Jira.TimeoutSeconds) * time.Second},
		logger:  logger,
		sleepFn: sleepFn,
	}
}

// truncateForLogging truncates response body for debug logging
func truncateForLogging(body []byte, maxLen int) string {
	bodyStr := string(body)
	if len(bodyStr) > maxLen {
		return bodyStr[:maxLen] + fmt.Sprintf("... (truncated, total: %d chars)", len(bodyStr))
	}
	return bodyStr
}

// truncateForError truncates response body for error messages
func truncateForError(body []byte) string {
	return truncateForLogging(body, maxBodyErrorLength)
}

func (s *JiraServiceImpl) apiURL(path string) string {
	version := s.config.Jira.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	return fmt.Sprintf("%s/rest/api/%s/%s", s.config.Jira.BaseURL, version, path)
}

// setAuthorization sets the Authorization header for the configured scheme
func (s *JiraServiceImpl) setAuthorization(req *http.Request) {
	if s.config.Jira.AuthScheme == models.AuthSchemeBasic {
		credential := s.config.Jira.APIToken
		if s.config.Jira.Username != "" {
			credential = base64.StdEncoding.EncodeToString([]byte(s.config.Jira.Username + ":" + s.config.Jira.APIToken))
		}
		req.Header.Set("Authorization", "Basic "+credential)
		return
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.config.Jira.APIToken))
}

func (s *JiraServiceImpl) doOperation(
	ctx context.Context,
	operation string,
	url string,
	okStatusCodes ...int,
) ([]byte, error) {
	s.logger.Debug("Doing operation", zap.String("operation", operation), zap.String("url", url))

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, operation, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s request: %w", operation, err)
		}

		s.setAuthorization(req)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send %s request: %w", operation, err)
		}

		// Read the body and close immediately so we can retry if needed
		body, readErr := io.ReadAll(resp.Body)
		closeErr := resp.Body.Close()
		if closeErr != nil {
			s.logger.Error("Failed to close response body", zap.Error(closeErr), zap.String("operation", operation), zap.String("url", url))
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		for _, okStatusCode := range okStatusCodes {
			// Success case
			if resp.StatusCode == okStatusCode {
				s.logger.Debug("Operation successful", zap.String("operation", operation), zap.String("url", url), zap.Int("status_code", resp.StatusCode))
				s.logger.Debug("Response body", zap.String("body", truncateForLogging(body, maxBodyLogLength)))
				return body, nil
			}
		}

		// Handle rate limiting with retry
		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			waitDuration := s.retryAfter(resp.Header.Get("Retry-After"))

			s.logger.Info("Rate limited by Jira, retrying after delay",
				zap.String("operation", operation),
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("wait_duration", waitDuration))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-s.sleepFn(waitDuration):
			}

			continue // Retry the request
		}

		// All other error cases - truncate body to avoid huge error messages
		return nil, &JiraAPIError{
			Operation:  operation,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       truncateForError(body),
			Messages:   jiraErrorMessages(body),
		}
	}

	return nil, fmt.Errorf("failed to %s %s after %d retries", operation, url, maxRetries)
}

// jiraErrorMessages decodes a Jira error document, flattening field errors to "field: message"
// in field order. It returns nil when body is not one.
func jiraErrorMessages(body []byte) []string {
	var errResp models.JiraErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return nil
	}

	messages := append([]string(nil), errResp.ErrorMessages...)
	fields := make([]string, 0, len(errResp.Errors))
	for field := range errResp.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, errResp.Errors[field]))
	}

	if len(messages) == 0 {
		return nil
	}
	return messages
}

// retryAfter parses a Retry-After header given in seconds, falling back to the default
// wait and capping at the maximum
func (s *JiraServiceImpl) retryAfter(header string) time.Duration {
	retrySeconds := defaultRetryWaitSeconds

	if header == "" {
		s.logger.Warn("Rate limited without Retry-After header, using default wait time",
			zap.Int("default_seconds", defaultRetryWaitSeconds))
		return time.Duration(retrySeconds) * time.Second
	}

	parsed, err := strconv.Atoi(header)
	switch {
	case err != nil:
		s.logger.Warn("Failed to parse Retry-After header, using default wait time",
			zap.String("retry_after", header),
			zap.Error(err),
			zap.Int("default_seconds", defaultRetryWaitSeconds))
	case parsed > maxRetryWaitSeconds:
		s.logger.Warn("Retry-After exceeds maximum, capping to max",
			zap.Int("requested_seconds", parsed),
			zap.Int("capped_to_seconds", maxRetryWaitSeconds))
		retrySeconds = maxRetryWaitSeconds
	case parsed >= 0:
		retrySeconds = parsed
	}

	return time.Duration(retrySeconds) * time.Second
}

// doGet is a helper function to make a GET request to Jira and process any rate limiting errors
func (s *JiraServiceImpl) doGet(ctx context.Context, url string) ([]byte, error) {
	return s.doOperation(ctx, http.MethodGet, url, http.StatusOK)
}

// GetTicket fetches a ticket from Jira
func (s *JiraServiceImpl) GetTicket(ctx context.Context, key string) (*models.JiraTicketResponse, error) {
	ticketURL := s.apiURL(fmt.Sprintf("issue/%s?fields=%s", url.PathEscape(key), ticketFields))

	body, err := s.doGet(ctx, ticketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", key, err)
	}

	var ticket models.JiraTicketResponse
	if err := json.Unmarshal(body, &ticket); err != nil {
		return nil, fmt.Errorf("failed to decode ticket %s: %w", key, err)
	}

	return &ticket, nil
}

// GetTicketDetails fetches a ticket and maps it to the details the gate reports on
func (s *JiraServiceImpl) GetTicketDetails(ctx context.Context, key string) (*models.JiraDetails, error) {
	ticket, err := s.GetTicket(ctx, key)
	if err != nil {
		return nil, err
	}

	details := s.ticketToDetails(ticket)
	s.logger.Debug("Fetched ticket details",
		zap.String("issue_key", details.Key),
		zap.String("status", details.Status),
		zap.String("type", details.Type.Name))

	return details, nil
}

// ticketToDetails maps the Jira REST representation to JiraDetails with browse links
func (s *JiraServiceImpl) ticketToDetails(ticket *models.JiraTicketResponse) *models.JiraDetails {
	baseURL := s.config.Jira.BaseURL
	fields := ticket.Fields

	details := &models.JiraDetails{
		Key:     ticket.Key,
		Summary: fields.Summary,
		URL:     fmt.Sprintf("%s/browse/%s", baseURL, ticket.Key),
		Status:  fields.Status.Name,
		Type: models.JiraDetailsType{
			Name: fields.IssueType.Name,
			Icon: fields.IssueType.IconURL,
		},
		Project: models.JiraDetailsProject{
			Name: fields.Project.Name,
			URL:  fmt.Sprintf("%s/browse/%s", baseURL, fields.Project.Key),
			Key:  fields.Project.Key,
		},
		Labels: make([]models.JiraDetailsLabel, 0, len(fields.Labels)),
	}

	if fields.StoryPoints != nil {
		details.Estimate = strconv.FormatFloat(*fields.StoryPoints, 'f', -1, 64)
	}

	for _, label := range fields.Labels {
		jql := fmt.Sprintf("project = %s AND labels = %s ORDER BY created DESC", fields.Project.Key, label)
		details.Labels = append(details.Labels, models.JiraDetailsLabel{
			Name: label,
			URL:  fmt.Sprintf("%s/issues?jql=%s", baseURL, encodeURIComponent(jql)),
		})
	}

	return details
}

// encodeURIComponent escapes s for use in a query string, encoding spaces as %20
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
