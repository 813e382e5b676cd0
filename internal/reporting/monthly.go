package reporting

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/internal/fields"
	"github.com/nysenate/audit-utils/internal/repository"
	"github.com/nysenate/audit-utils/internal/tracking"
	"github.com/nysenate/audit-utils/pkg/util/errorutil"
)

// MonthlyRow is one employee's account state on the target system at the
// snapshot instant.
type MonthlyRow struct {
	EmployeeID    string               `json:"employee_id"`
	EmployeeName  string               `json:"employee_name"`
	EmployeeUID   string               `json:"employee_uid"`
	AccountType   string               `json:"account_type"`
	Status        domain.AccountStatus `json:"status"`
	AccountAction domain.AccountAction `json:"account_action"`
	ClosedOn      time.Time            `json:"closed_on"`
	RequestCode   string               `json:"request_code"`
	IssueID       int64                `json:"issue_id"`
}

// MonthlyReport is the point-in-time snapshot result.
type MonthlyReport struct {
	TargetSystem string       `json:"target_system"`
	AsOf         time.Time    `json:"as_of"`
	Rows         []MonthlyRow `json:"rows"`
	Errors       []string     `json:"errors,omitempty"`
}

// Success reports whether generation completed without errors.
func (r *MonthlyReport) Success() bool {
	return len(r.Errors) == 0
}

// MonthlyAggregator snapshots one target system's account population at an
// instant, enriching each row with the employee name and UID stored on the
// winning issue.
type MonthlyAggregator struct {
	store    repository.IssueStore
	tracking *tracking.Service
	fields   fields.Mapping
	logger   *zap.Logger

	// Now supplies the default as-of instant; overridable in tests.
	Now func() time.Time
}

// NewMonthlyAggregator constructs the aggregator.
func NewMonthlyAggregator(store repository.IssueStore, trackingSvc *tracking.Service, mapping fields.Mapping, logger *zap.Logger) *MonthlyAggregator {
	return &MonthlyAggregator{
		store:    store,
		tracking: trackingSvc,
		fields:   mapping,
		logger:   logger,
		Now:      time.Now,
	}
}

// Generate builds the snapshot for targetSystem at asOf (zero means now).
func (a *MonthlyAggregator) Generate(ctx context.Context, targetSystem string, asOf time.Time) *MonthlyReport {
	if asOf.IsZero() {
		asOf = a.Now()
	}
	report := &MonthlyReport{TargetSystem: targetSystem, AsOf: asOf}

	if err := a.validateTargetSystem(ctx, targetSystem); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	statuses, err := a.tracking.StatusesForSystem(ctx, targetSystem, asOf)
	if err != nil {
		a.logger.Error("monthly report: status fetch failed", zap.Error(err))
		report.Errors = append(report.Errors, "Failed to fetch account statuses: "+err.Error())
		return report
	}

	names, uids, err := a.enrichment(ctx, statuses)
	if err != nil {
		// Enrichment is best effort; rows still render without names.
		a.logger.Error("monthly report: employee enrichment failed", zap.Error(err))
		names, uids = map[int64]string{}, map[int64]string{}
	}

	rows := make([]MonthlyRow, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, MonthlyRow{
			EmployeeID:    status.EmployeeID,
			EmployeeName:  names[status.IssueID],
			EmployeeUID:   uids[status.IssueID],
			AccountType:   status.AccountType,
			Status:        status.Status,
			AccountAction: status.AccountAction,
			ClosedOn:      status.ClosedOn,
			RequestCode:   status.RequestCode,
			IssueID:       status.IssueID,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return employeeIDLess(rows[i].EmployeeID, rows[j].EmployeeID)
	})
	report.Rows = rows
	return report
}

// validateTargetSystem checks the system against the field's enumerated
// value set when that set is resolvable; otherwise it is accepted unchecked.
// Blank systems pass through and simply produce an empty report.
func (a *MonthlyAggregator) validateTargetSystem(ctx context.Context, targetSystem string) error {
	if targetSystem == "" || a.fields.TargetSystem == 0 {
		return nil
	}
	valid, err := a.store.PossibleValues(ctx, a.fields.TargetSystem)
	if err != nil {
		a.logger.Warn("monthly report: possible values lookup failed", zap.Error(err))
		return nil
	}
	if len(valid) == 0 {
		return nil
	}
	for _, v := range valid {
		if v == targetSystem {
			return nil
		}
	}
	return errorutil.NewValidationError("Invalid target system: "+targetSystem, nil)
}

// enrichment bulk-loads employee name/UID custom values across all winning
// issues in one store round trip.
func (a *MonthlyAggregator) enrichment(ctx context.Context, statuses []domain.AccountStatusRecord) (names, uids map[int64]string, err error) {
	names, uids = map[int64]string{}, map[int64]string{}
	if len(statuses) == 0 {
		return names, uids, nil
	}

	var fieldIDs []int64
	if a.fields.EmployeeName != 0 {
		fieldIDs = append(fieldIDs, a.fields.EmployeeName)
	}
	if a.fields.EmployeeUID != 0 {
		fieldIDs = append(fieldIDs, a.fields.EmployeeUID)
	}
	if len(fieldIDs) == 0 {
		return names, uids, nil
	}

	issueIDs := make([]int64, 0, len(statuses))
	for _, status := range statuses {
		issueIDs = append(issueIDs, status.IssueID)
	}

	values, err := a.store.FieldValues(ctx, issueIDs, fieldIDs)
	if err != nil {
		return nil, nil, err
	}
	for issueID, byField := range values {
		if name, ok := byField[a.fields.EmployeeName]; ok {
			names[issueID] = name
		}
		if uid, ok := byField[a.fields.EmployeeUID]; ok {
			uids[issueID] = uid
		}
	}
	return names, uids, nil
}

// employeeIDLess orders IDs numerically when both parse as integers,
// falling back to string comparison.
func employeeIDLess(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
