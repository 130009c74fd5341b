package service

import (
	"context"
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/models/dto"
	"github.com/stretchr/testify/mock"
)

// MockTracker мок клиента трекера для тестов
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) FetchRevisions(ctx context.Context, q *dto.RevisionQuery) ([]domain.Revision, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Revision), args.Error(1)
}

func (m *MockTracker) FetchTasks(ctx context.Context, c *dto.TaskConstraints) ([]domain.Task, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTracker) ProjectByName(ctx context.Context, name string, includeMembers bool) (*domain.Project, error) {
	args := m.Called(ctx, name, includeMembers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockTracker) AllProjects(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *MockTracker) ProjectColumns(ctx context.Context, projectPHID string) ([]domain.ProjectColumn, error) {
	args := m.Called(ctx, projectPHID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProjectColumn), args.Error(1)
}

func (m *MockTracker) UsersByUsername(ctx context.Context, usernames []string) ([]domain.User, error) {
	args := m.Called(ctx, usernames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockTracker) UsersByPHID(ctx context.Context, phids []string) (map[string]domain.User, error) {
	args := m.Called(ctx, phids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.User), args.Error(1)
}

func (m *MockTracker) ReposByPHID(ctx context.Context, phids []string) (map[string]domain.Repo, error) {
	args := m.Called(ctx, phids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Repo), args.Error(1)
}

// MockLastRunRepository мок хранилища последнего запуска
type MockLastRunRepository struct {
	mock.Mock
}

func (m *MockLastRunRepository) GetLastRun(ctx context.Context, reportName string) (time.Time, error) {
	args := m.Called(ctx, reportName)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockLastRunRepository) SaveLastRun(ctx context.Context, reportName string, ts time.Time) error {
	args := m.Called(ctx, reportName, ts)
	return args.Error(0)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func userPHID(name string) string {
	return "PHID-USER-" + name
}

func accepted(name string) domain.Reviewer {
	return domain.Reviewer{PHID: userPHID(name), Status: domain.ReviewerStatusAccepted}
}

func rejected(name string) domain.Reviewer {
	return domain.Reviewer{PHID: userPHID(name), Status: domain.ReviewerStatusRejected}
}

func added(name string) domain.Reviewer {
	return domain.Reviewer{PHID: userPHID(name), Status: domain.ReviewerStatusAdded}
}
