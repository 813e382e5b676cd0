package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/api/http/handlers"
	"github.com/nysenate/audit-utils/internal/auth"
	"github.com/nysenate/audit-utils/internal/directory"
	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/internal/fields"
	"github.com/nysenate/audit-utils/internal/observability"
	"github.com/nysenate/audit-utils/internal/reporting"
	"github.com/nysenate/audit-utils/internal/requestcode"
	"github.com/nysenate/audit-utils/internal/tracking"
)

// fakeStore is an in-memory issue store for endpoint tests.
type fakeStore struct {
	issues         []domain.Issue
	possibleValues map[int64][]string
}

func (s *fakeStore) FindIssueIDsByFieldValue(_ context.Context, fieldID int64, value string) ([]int64, error) {
	var ids []int64
	for _, issue := range s.issues {
		if issue.Fields[fieldID] == value {
			ids = append(ids, issue.ID)
		}
	}
	return ids, nil
}

func (s *fakeStore) FetchClosed(_ context.Context, ids []int64, closedBefore *time.Time) ([]domain.Issue, error) {
	var out []domain.Issue
	for _, issue := range s.issues {
		if issue.ClosedOn == nil || !contains(ids, issue.ID) {
			continue
		}
		if closedBefore != nil && issue.ClosedOn.After(*closedBefore) {
			continue
		}
		out = append(out, issue)
	}
	return out, nil
}

func (s *fakeStore) FetchOpen(_ context.Context, ids []int64) ([]domain.Issue, error) {
	var out []domain.Issue
	for _, issue := range s.issues {
		if issue.ClosedOn == nil && contains(ids, issue.ID) {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (s *fakeStore) FetchActiveInWindow(_ context.Context, from, to time.Time) ([]domain.Issue, error) {
	var out []domain.Issue
	for _, issue := range s.issues {
		if !issue.UpdatedOn.Before(from) && !issue.UpdatedOn.After(to) {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (s *fakeStore) FieldValues(_ context.Context, issueIDs, fieldIDs []int64) (map[int64]map[int64]string, error) {
	out := make(map[int64]map[int64]string)
	for _, issue := range s.issues {
		if !contains(issueIDs, issue.ID) {
			continue
		}
		values := make(map[int64]string)
		for _, fieldID := range fieldIDs {
			if v, ok := issue.Fields[fieldID]; ok {
				values[fieldID] = v
			}
		}
		out[issue.ID] = values
	}
	return out, nil
}

func (s *fakeStore) PossibleValues(_ context.Context, fieldID int64) ([]string, error) {
	return s.possibleValues[fieldID], nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// fakeDirectory is a canned directory source.
type fakeDirectory struct {
	changes   []domain.StatusChange
	employees []domain.Employee
	err       error
}

func (d *fakeDirectory) StatusChanges(context.Context, time.Time, time.Time) ([]domain.StatusChange, error) {
	return d.changes, d.err
}

func (d *fakeDirectory) SearchEmployees(context.Context, string, int, int) ([]domain.Employee, error) {
	return d.employees, d.err
}

func (d *fakeDirectory) EmployeeByID(_ context.Context, id int64) (*domain.Employee, error) {
	for i := range d.employees {
		if d.employees[i].EmployeeID == id {
			return &d.employees[i], nil
		}
	}
	return nil, d.err
}

var _ directory.Source = (*fakeDirectory)(nil)

func testMapping() fields.Mapping {
	return fields.Mapping{
		EmployeeID:    1,
		TargetSystem:  2,
		AccountAction: 3,
		EmployeeName:  4,
		EmployeeUID:   5,
	}
}

type testEnv struct {
	app    *fiber.App
	tokens *auth.TokenManager
	now    time.Time
}

// newTestEnv assembles the full route stack over fakes, with a fixed clock.
func newTestEnv(store *fakeStore, dir *fakeDirectory) *testEnv {
	logger := zap.NewNop()
	mapping := testMapping()
	mapper := requestcode.New(nil)
	loc := time.UTC
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, loc)
	clock := func() time.Time { return now }

	trackingSvc := tracking.NewService(store, mapping, mapper)

	daily := reporting.NewDailyAggregator(dir, trackingSvc, loc, logger)
	daily.Now = clock
	weekly := reporting.NewWeeklyAggregator(store, mapping, mapper, loc, logger)
	weekly.Now = clock
	monthly := reporting.NewMonthlyAggregator(store, trackingSvc, mapping, logger)

	tokens := auth.NewTokenManager("test-secret", 60)
	metrics := observability.NewMetrics()

	reportsHandler := handlers.NewReportsHandler(daily, weekly, monthly, loc, logger)
	reportsHandler.Now = clock

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("audit-utils", "test", nil, nil),
		Reports:        reportsHandler,
		Employees:      handlers.NewEmployeesHandler(dir, mapping, logger),
		Settings:       handlers.NewSettingsHandler(mapping, mapper),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	return &testEnv{app: app, tokens: tokens, now: now}
}

// get performs an authenticated request against the test app.
func (e *testEnv) get(path string) (*http.Response, error) {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	token, _, _ := e.tokens.GenerateToken("operator", "admin")
	req.Header.Set("Authorization", "Bearer "+token)
	return e.app.Test(req, -1)
}
