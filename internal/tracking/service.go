// Package tracking derives current account state from closed-issue history.
package tracking

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/internal/fields"
	"github.com/nysenate/audit-utils/internal/repository"
	"github.com/nysenate/audit-utils/internal/requestcode"
	"github.com/nysenate/audit-utils/pkg/util/errorutil"
)

// Service reconstructs per-account status from issue history using
// latest-wins-by-closure-time reduction. Read-only and stateless; every
// call recomputes from the store.
type Service struct {
	store  repository.IssueStore
	fields fields.Mapping
	mapper *requestcode.Mapper
}

// NewService constructs the engine. The field mapping and code mapper are
// injected so the engine never reads ambient settings.
func NewService(store repository.IssueStore, mapping fields.Mapping, mapper *requestcode.Mapper) *Service {
	return &Service{store: store, fields: mapping, mapper: mapper}
}

// StatusesForEmployee returns one record per target system the employee has
// closed issues on, each reflecting the latest-closed issue for that system.
// A blank employee ID yields an empty result, not an error.
func (s *Service) StatusesForEmployee(ctx context.Context, employeeID string) ([]domain.AccountStatusRecord, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return []domain.AccountStatusRecord{}, nil
	}
	if err := s.fields.Validate(); err != nil {
		return nil, err
	}

	ids, err := s.store.FindIssueIDsByFieldValue(ctx, s.fields.EmployeeID, employeeID)
	if err != nil {
		return nil, errorutil.NewUpstreamError("issue store", err)
	}
	issues, err := s.store.FetchClosed(ctx, ids, nil)
	if err != nil {
		return nil, errorutil.NewUpstreamError("issue store", err)
	}

	winners := reduceLatest(issues, func(issue *domain.Issue) string {
		return issue.FieldValue(s.fields.TargetSystem)
	}, s.fields.AccountAction)

	records := make([]domain.AccountStatusRecord, 0, len(winners))
	for accountType, issue := range winners {
		records = append(records, s.statusRecord(employeeID, accountType, issue))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].AccountType < records[j].AccountType
	})
	return records, nil
}

// OpenRequestsForEmployee returns one record per currently-open issue that
// carries both required account fields. No reduction: open issues are not
// superseded by each other.
func (s *Service) OpenRequestsForEmployee(ctx context.Context, employeeID string) ([]domain.OpenRequestRecord, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return []domain.OpenRequestRecord{}, nil
	}
	if err := s.fields.Validate(); err != nil {
		return nil, err
	}

	ids, err := s.store.FindIssueIDsByFieldValue(ctx, s.fields.EmployeeID, employeeID)
	if err != nil {
		return nil, errorutil.NewUpstreamError("issue store", err)
	}
	issues, err := s.store.FetchOpen(ctx, ids)
	if err != nil {
		return nil, errorutil.NewUpstreamError("issue store", err)
	}

	requests := make([]domain.OpenRequestRecord, 0, len(issues))
	for i := range issues {
		issue := &issues[i]
		accountType := issue.FieldValue(s.fields.TargetSystem)
		action := issue.FieldValue(s.fields.AccountAction)
		if accountType == "" || action == "" {
			continue
		}
		requests = append(requests, domain.OpenRequestRecord{
			EmployeeID:    employeeID,
			AccountType:   accountType,
			AccountAction: domain.AccountAction(action),
			IssueID:       issue.ID,
			RequestCode:   s.mapper.GetRequestCode(action, accountType),
		})
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].AccountType != requests[j].AccountType {
			return requests[i].AccountType < requests[j].AccountType
		}
		return requests[i].IssueID < requests[j].IssueID
	})
	return requests, nil
}

// StatusesForSystem returns one record per employee with closed issues on
// the target system, reflecting each employee's latest issue closed at or
// before asOf. Issues closed after asOf are invisible even when the query
// runs later. Implemented as two bulk store round trips; never per-employee.
func (s *Service) StatusesForSystem(ctx context.Context, targetSystem string, asOf time.Time) ([]domain.AccountStatusRecord, error) {
	targetSystem = strings.TrimSpace(targetSystem)
	if targetSystem == "" {
		return []domain.AccountStatusRecord{}, nil
	}
	if err := s.fields.Validate(); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	ids, err := s.store.FindIssueIDsByFieldValue(ctx, s.fields.TargetSystem, targetSystem)
	if err != nil {
		return nil, errorutil.NewUpstreamError("issue store", err)
	}
	issues, err := s.store.FetchClosed(ctx, ids, &asOf)
	if err != nil {
		return nil, errorutil.NewUpstreamError("issue store", err)
	}

	winners := reduceLatest(issues, func(issue *domain.Issue) string {
		return issue.FieldValue(s.fields.EmployeeID)
	}, s.fields.AccountAction)

	records := make([]domain.AccountStatusRecord, 0, len(winners))
	for employeeID, issue := range winners {
		records = append(records, s.statusRecord(employeeID, targetSystem, issue))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].EmployeeID < records[j].EmployeeID
	})
	return records, nil
}

func (s *Service) statusRecord(employeeID, accountType string, issue *domain.Issue) domain.AccountStatusRecord {
	action := domain.AccountAction(issue.FieldValue(s.fields.AccountAction))
	return domain.AccountStatusRecord{
		EmployeeID:    employeeID,
		AccountType:   accountType,
		Status:        domain.StatusForAction(action),
		IssueID:       issue.ID,
		ClosedOn:      *issue.ClosedOn,
		AccountAction: action,
		RequestCode:   s.mapper.GetRequestCode(string(action), accountType),
	}
}

// reduceLatest groups closed issues by key and keeps the latest-closed issue
// per group. Issues missing the key or the action field are skipped as
// noise. Two issues with identical closure timestamps tie-break on issue ID
// descending.
func reduceLatest(issues []domain.Issue, keyOf func(*domain.Issue) string, actionFieldID int64) map[string]*domain.Issue {
	winners := make(map[string]*domain.Issue)
	for i := range issues {
		issue := &issues[i]
		key := keyOf(issue)
		if key == "" || issue.FieldValue(actionFieldID) == "" || issue.ClosedOn == nil {
			continue
		}
		current, ok := winners[key]
		if !ok || laterClosed(issue, current) {
			winners[key] = issue
		}
	}
	return winners
}

func laterClosed(a, b *domain.Issue) bool {
	if !a.ClosedOn.Equal(*b.ClosedOn) {
		return a.ClosedOn.After(*b.ClosedOn)
	}
	return a.ID > b.ID
}
