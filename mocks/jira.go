package mocks

import (
	"context"

	"jira-merge-gate/models"
)

// MockJiraService is a mock implementation of the JiraService interface
type MockJiraService struct {
	GetTicketFunc        func(ctx context.Context, key string) (*models.JiraTicketResponse, error)
	GetTicketDetailsFunc func(ctx context.Context, key string) (*models.JiraDetails, error)

	// DetailsCalls records the keys passed to GetTicketDetails, in order
	DetailsCalls []string
}

// GetTicket is the mock implementation of JiraService's GetTicket method
func (m *MockJiraService) GetTicket(ctx context.Context, key string) (*models.JiraTicketResponse, error) {
	if m.GetTicketFunc != nil {
		return m.GetTicketFunc(ctx, key)
	}
	return nil, nil
}

// GetTicketDetails is the mock implementation of JiraService's GetTicketDetails method
func (m *MockJiraService) GetTicketDetails(ctx context.Context, key string) (*models.JiraDetails, error) {
	m.DetailsCalls = append(m.DetailsCalls, key)
	if m.GetTicketDetailsFunc != nil {
		return m.GetTicketDetailsFunc(ctx, key)
	}
	return nil, nil
}
