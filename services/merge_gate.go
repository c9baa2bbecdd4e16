package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jira-merge-gate/models"
)

// MergeGateService decides whether a piece of text references an acceptable Jira issue
type MergeGateService interface {
	// Check extracts issue keys from text and validates the ones the selection policy picks
	Check(ctx context.Context, text string) (*models.GateResult, error)

	// CheckKey validates a single, already known key
	CheckKey(ctx context.Context, key models.IssueKey) (*models.GateResult, error)
}

// MergeGateServiceImpl implements the MergeGateService interface
type MergeGateServiceImpl struct {
	jiraService JiraService
	config      *models.Config
	logger      *zap.Logger
}

// NewMergeGateService creates a new MergeGateService
func NewMergeGateService(jiraService JiraService, config *models.Config, logger *zap.Logger) MergeGateService {
	return &MergeGateServiceImpl{
		jiraService: jiraService,
		config:      config,
		logger:      logger,
	}
}

// Check extracts issue keys from text and validates the ones the selection policy picks.
// The result is returned even on failure so callers can report what was found.
func (s *MergeGateServiceImpl) Check(ctx context.Context, text string) (*models.GateResult, error) {
	result := &models.GateResult{
		Text: text,
		Keys: ExtractIssueKeys(text),
	}

	s.logger.Info("Extracted issue keys",
		zap.String("text", text),
		zap.Strings("issue_keys", result.Keys.Strings()))

	if len(result.Keys) == 0 {
		return result, ErrIssueKeyMissing
	}

	result.Selected = s.config.Gate.KeySelection.Select(result.Keys)
	s.logger.Info("Selected issue keys",
		zap.String("key_selection", s.config.Gate.KeySelection.String()),
		zap.Strings("issue_keys", result.Selected.Strings()))

	return result, s.validate(ctx, result)
}

// CheckKey validates a single, already known key. A zero key is reported as missing.
func (s *MergeGateServiceImpl) CheckKey(ctx context.Context, key models.IssueKey) (*models.GateResult, error) {
	if key.IsZero() {
		return &models.GateResult{}, ErrIssueKeyMissing
	}

	result := &models.GateResult{
		Text:     key.String(),
		Keys:     models.IssueKeys{key},
		Selected: models.IssueKeys{key},
	}
	return result, s.validate(ctx, result)
}

// validate looks up every selected key and checks its status, stopping at the first failure
func (s *MergeGateServiceImpl) validate(ctx context.Context, result *models.GateResult) error {
	enforce := s.config.Validation.Enabled
	allowed := s.config.Validation.AllowedStatuses

	for _, key := range result.Selected {
		details, err := s.jiraService.GetTicketDetails(ctx, key.String())
		if err != nil {
			var apiErr *JiraAPIError
			if errors.As(err, &apiErr) && (apiErr.IsNotFound() || apiErr.IsUnauthorized()) {
				s.logger.Warn("Issue key did not resolve",
					zap.String("issue_key", key.String()),
					zap.Int("status_code", apiErr.StatusCode))
				return fmt.Errorf("%w: %s: %w", ErrInvalidIssueKey, key, err)
			}
			return fmt.Errorf("failed to look up %s: %w", key, err)
		}

		if details == nil || details.Key == "" {
			s.logger.Warn("Lookup returned no issue", zap.String("issue_key", key.String()))
			return fmt.Errorf("%w: %s", ErrInvalidIssueKey, key)
		}
		result.Issues = append(result.Issues, *details)

		if !IsIssueStatusValid(enforce, allowed, details) {
			s.logger.Warn("Issue status not allowed",
				zap.String("issue_key", details.Key),
				zap.String("status", details.Status),
				zap.Strings("allowed_statuses", allowed))
			return fmt.Errorf("%w: %s is %q, allowed: %s",
				ErrStatusNotAllowed, details.Key, details.Status, strings.Join(allowed, ", "))
		}

		s.logger.Info("Issue accepted",
			zap.String("issue_key", details.Key),
			zap.String("status", details.Status),
			zap.Bool("status_enforced", enforce))
	}

	result.Passed = true
	return nil
}
