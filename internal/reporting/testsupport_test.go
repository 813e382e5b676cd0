package reporting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/internal/fields"
)

const (
	fieldEmployeeID    int64 = 1
	fieldTargetSystem  int64 = 2
	fieldAccountAction int64 = 3
	fieldEmployeeName  int64 = 4
	fieldEmployeeUID   int64 = 5
)

var testMapping = fields.Mapping{
	EmployeeID:    fieldEmployeeID,
	TargetSystem:  fieldTargetSystem,
	AccountAction: fieldAccountAction,
	EmployeeName:  fieldEmployeeName,
	EmployeeUID:   fieldEmployeeUID,
}

var testLogger = zap.NewNop()

// memoryStore is an in-memory IssueStore for aggregator tests.
type memoryStore struct {
	issues         []domain.Issue
	possibleValues []string
	err            error
}

func (m *memoryStore) FindIssueIDsByFieldValue(_ context.Context, fieldID int64, value string) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	var ids []int64
	for i := range m.issues {
		if m.issues[i].FieldValue(fieldID) == value {
			ids = append(ids, m.issues[i].ID)
		}
	}
	return ids, nil
}

func (m *memoryStore) FetchClosed(_ context.Context, ids []int64, closedBefore *time.Time) ([]domain.Issue, error) {
	if m.err != nil {
		return nil, m.err
	}
	idSet := make(map[int64]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var result []domain.Issue
	for i := range m.issues {
		issue := m.issues[i]
		if !idSet[issue.ID] || !issue.IsClosed || issue.ClosedOn == nil {
			continue
		}
		if closedBefore != nil && issue.ClosedOn.After(*closedBefore) {
			continue
		}
		result = append(result, issue)
	}
	return result, nil
}

func (m *memoryStore) FetchOpen(_ context.Context, ids []int64) ([]domain.Issue, error) {
	if m.err != nil {
		return nil, m.err
	}
	idSet := make(map[int64]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var result []domain.Issue
	for i := range m.issues {
		if idSet[m.issues[i].ID] && !m.issues[i].IsClosed {
			result = append(result, m.issues[i])
		}
	}
	return result, nil
}

func (m *memoryStore) FetchActiveInWindow(_ context.Context, from, to time.Time) ([]domain.Issue, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.Issue
	for i := range m.issues {
		issue := m.issues[i]
		inWindow := func(t time.Time) bool { return !t.Before(from) && !t.After(to) }
		if inWindow(issue.CreatedOn) || inWindow(issue.UpdatedOn) {
			result = append(result, issue)
		}
	}
	return result, nil
}

func (m *memoryStore) FieldValues(_ context.Context, issueIDs, fieldIDs []int64) (map[int64]map[int64]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	wantIssue := make(map[int64]bool, len(issueIDs))
	for _, id := range issueIDs {
		wantIssue[id] = true
	}
	wantField := make(map[int64]bool, len(fieldIDs))
	for _, id := range fieldIDs {
		wantField[id] = true
	}
	result := make(map[int64]map[int64]string)
	for i := range m.issues {
		issue := m.issues[i]
		if !wantIssue[issue.ID] {
			continue
		}
		for fieldID, value := range issue.Fields {
			if !wantField[fieldID] {
				continue
			}
			if result[issue.ID] == nil {
				result[issue.ID] = make(map[int64]string)
			}
			result[issue.ID][fieldID] = value
		}
	}
	return result, nil
}

func (m *memoryStore) PossibleValues(context.Context, int64) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.possibleValues, nil
}

// fakeDirectory is a canned directory.Source.
type fakeDirectory struct {
	changes   []domain.StatusChange
	employees []domain.Employee
	err       error
}

func (f *fakeDirectory) StatusChanges(context.Context, time.Time, time.Time) ([]domain.StatusChange, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.changes, nil
}

func (f *fakeDirectory) SearchEmployees(context.Context, string, int, int) ([]domain.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.employees, nil
}

func (f *fakeDirectory) EmployeeByID(context.Context, int64) (*domain.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.employees) == 0 {
		return nil, nil
	}
	return &f.employees[0], nil
}

func closedIssue(id int64, employeeID, system, action string, closedOn time.Time) domain.Issue {
	return domain.Issue{
		ID:        id,
		IsClosed:  true,
		ClosedOn:  &closedOn,
		CreatedOn: closedOn.Add(-24 * time.Hour),
		UpdatedOn: closedOn,
		Fields: map[int64]string{
			fieldEmployeeID:    employeeID,
			fieldTargetSystem:  system,
			fieldAccountAction: action,
		},
	}
}

func statusChange(employeeID int64, name, code string, postDate time.Time) domain.StatusChange {
	return domain.StatusChange{
		TransactionCode: code,
		PostDateTime:    &postDate,
		Employee: domain.Employee{
			EmployeeID: employeeID,
			FullName:   name,
			WorkPhone:  "518-555-0100",
			Location: &domain.Location{
				Description:    "Capitol Building",
				RespCenterHead: &domain.RespCenterHead{ShortName: "STS"},
			},
		},
	}
}
