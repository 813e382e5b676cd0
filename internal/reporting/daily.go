// Package reporting builds the daily, weekly, and monthly audit reports.
// Aggregators capture expected failures at their own boundary: Generate
// returns a report whose Errors list is populated instead of an error.
package reporting

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/businessday"
	"github.com/nysenate/audit-utils/internal/directory"
	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/internal/tracking"
)

// DailyRow is one employee's activity in the daily report window.
type DailyRow struct {
	EmployeeID       string                       `json:"employee_id"`
	EmployeeName     string                       `json:"employee_name"`
	TransactionCodes string                       `json:"transaction_codes"`
	PhoneNumber      string                       `json:"phone_number"`
	Office           string                       `json:"office"`
	OfficeLocation   string                       `json:"office_location"`
	PostDate         *time.Time                   `json:"post_date"`
	AccountStatuses  []domain.AccountStatusRecord `json:"account_statuses"`
	OpenRequests     []domain.OpenRequestRecord   `json:"open_requests"`
}

// DailyReport is the daily aggregation result.
type DailyReport struct {
	From   time.Time  `json:"from"`
	To     time.Time  `json:"to"`
	Rows   []DailyRow `json:"rows"`
	Errors []string   `json:"errors,omitempty"`
}

// Success reports whether generation completed without errors.
func (r *DailyReport) Success() bool {
	return len(r.Errors) == 0
}

// DailyAggregator joins directory status-change events with derived account
// state, one row per employee seen in the window.
type DailyAggregator struct {
	directory directory.Source
	tracking  *tracking.Service
	loc       *time.Location
	logger    *zap.Logger

	// Now is the clock used for window defaults; overridable in tests.
	Now func() time.Time
}

// NewDailyAggregator constructs the aggregator.
func NewDailyAggregator(source directory.Source, trackingSvc *tracking.Service, loc *time.Location, logger *zap.Logger) *DailyAggregator {
	return &DailyAggregator{
		directory: source,
		tracking:  trackingSvc,
		loc:       loc,
		logger:    logger,
		Now:       time.Now,
	}
}

// Generate builds the report for [from, to]. Zero bounds default to the
// business-calendar query start date and now respectively. A directory
// failure fails the whole report; no partial rows are produced.
func (a *DailyAggregator) Generate(ctx context.Context, from, to time.Time) *DailyReport {
	now := a.Now()
	if from.IsZero() {
		from = businessday.QueryStartDate(now, a.loc)
	}
	if to.IsZero() {
		to = now
	}
	report := &DailyReport{From: from, To: to}

	changes, err := a.directory.StatusChanges(ctx, from, to)
	if err != nil {
		a.logger.Error("daily report: status change fetch failed", zap.Error(err))
		report.Errors = append(report.Errors, "Failed to fetch status changes from directory: "+err.Error())
		return report
	}

	rows, err := a.buildRows(ctx, changes)
	if err != nil {
		a.logger.Error("daily report: row build failed", zap.Error(err))
		report.Errors = append(report.Errors, "Report generation failed: "+err.Error())
		return report
	}
	report.Rows = rows
	return report
}

func (a *DailyAggregator) buildRows(ctx context.Context, changes []domain.StatusChange) ([]DailyRow, error) {
	if len(changes) == 0 {
		return []DailyRow{}, nil
	}

	grouped := make(map[string][]domain.StatusChange)
	for _, change := range changes {
		key := strconv.FormatInt(change.Employee.EmployeeID, 10)
		grouped[key] = append(grouped[key], change)
	}

	employeeIDs := make([]string, 0, len(grouped))
	for id := range grouped {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	rows := make([]DailyRow, 0, len(grouped))
	for _, employeeID := range employeeIDs {
		employeeChanges := grouped[employeeID]
		employee := employeeChanges[0].Employee

		statuses, err := a.tracking.StatusesForEmployee(ctx, employeeID)
		if err != nil {
			return nil, err
		}
		openRequests, err := a.tracking.OpenRequestsForEmployee(ctx, employeeID)
		if err != nil {
			return nil, err
		}

		rows = append(rows, DailyRow{
			EmployeeID:       employeeID,
			EmployeeName:     employee.DisplayName(),
			TransactionCodes: joinTransactionCodes(employeeChanges),
			PhoneNumber:      employee.WorkPhone,
			Office:           employee.RespCenterDisplayName(),
			OfficeLocation:   employee.LocationDisplayName(),
			PostDate:         latestPostDate(employeeChanges),
			AccountStatuses:  statuses,
			OpenRequests:     openRequests,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].PostDate, rows[j].PostDate
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	return rows, nil
}

// joinTransactionCodes deduplicates codes preserving first-seen order.
func joinTransactionCodes(changes []domain.StatusChange) string {
	seen := make(map[string]bool, len(changes))
	var codes []string
	for _, change := range changes {
		if change.TransactionCode == "" || seen[change.TransactionCode] {
			continue
		}
		seen[change.TransactionCode] = true
		codes = append(codes, change.TransactionCode)
	}
	return strings.Join(codes, ", ")
}

// latestPostDate returns the max post date across an employee's changes,
// truncated to the day.
func latestPostDate(changes []domain.StatusChange) *time.Time {
	var latest *time.Time
	for _, change := range changes {
		if change.PostDateTime == nil {
			continue
		}
		if latest == nil || change.PostDateTime.After(*latest) {
			latest = change.PostDateTime
		}
	}
	if latest == nil {
		return nil
	}
	day := time.Date(latest.Year(), latest.Month(), latest.Day(), 0, 0, 0, 0, latest.Location())
	return &day
}
