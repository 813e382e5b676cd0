package reporting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/fields"
	"github.com/nysenate/audit-utils/internal/repository"
	"github.com/nysenate/audit-utils/internal/requestcode"
)

// WeeklyRow is one issue active in the current calendar week. Rows are per
// issue, not per employee; no cross-issue reduction happens here.
type WeeklyRow struct {
	IssueID     int64     `json:"issue_id"`
	Subject     string    `json:"subject"`
	Status      string    `json:"status"`
	EmployeeID  string    `json:"employee_id"`
	EmployeeUID string    `json:"employee_uid"`
	RequestCode string    `json:"request_code"`
	UpdatedOn   time.Time `json:"updated_on"`
	CreatedOn   time.Time `json:"created_on"`
}

// WeeklyReport is the weekly aggregation result.
type WeeklyReport struct {
	From   time.Time   `json:"from"`
	To     time.Time   `json:"to"`
	Rows   []WeeklyRow `json:"rows"`
	Errors []string    `json:"errors,omitempty"`
}

// Success reports whether generation completed without errors.
func (r *WeeklyReport) Success() bool {
	return len(r.Errors) == 0
}

// WeeklyAggregator lists issue activity for the current calendar week,
// Monday midnight through now, straight from the issue store.
type WeeklyAggregator struct {
	store  repository.IssueStore
	fields fields.Mapping
	mapper *requestcode.Mapper
	loc    *time.Location
	logger *zap.Logger

	// Now is the clock that anchors the week; overridable in tests.
	Now func() time.Time
}

// NewWeeklyAggregator constructs the aggregator.
func NewWeeklyAggregator(store repository.IssueStore, mapping fields.Mapping, mapper *requestcode.Mapper, loc *time.Location, logger *zap.Logger) *WeeklyAggregator {
	return &WeeklyAggregator{
		store:  store,
		fields: mapping,
		mapper: mapper,
		loc:    loc,
		logger: logger,
		Now:    time.Now,
	}
}

// Generate builds the report. The window is fixed: this week's Monday at
// midnight in the reporting zone through now.
func (a *WeeklyAggregator) Generate(ctx context.Context) *WeeklyReport {
	now := a.Now().In(a.loc)
	report := &WeeklyReport{From: beginningOfWeek(now), To: now}

	if a.fields.EmployeeID == 0 {
		report.Errors = append(report.Errors, "Employee ID custom field is not configured")
		return report
	}

	issues, err := a.store.FetchActiveInWindow(ctx, report.From, report.To)
	if err != nil {
		a.logger.Error("weekly report: issue fetch failed", zap.Error(err))
		report.Errors = append(report.Errors, "Report generation failed: "+err.Error())
		return report
	}

	rows := make([]WeeklyRow, 0, len(issues))
	for i := range issues {
		issue := &issues[i]
		row := WeeklyRow{
			IssueID:    issue.ID,
			Subject:    issue.Subject,
			Status:     issue.StatusName,
			EmployeeID: issue.FieldValue(a.fields.EmployeeID),
			UpdatedOn:  issue.UpdatedOn,
			CreatedOn:  issue.CreatedOn,
		}
		if a.fields.EmployeeUID != 0 {
			row.EmployeeUID = issue.FieldValue(a.fields.EmployeeUID)
		}
		// The request code reflects this single issue's own fields.
		if a.fields.AccountAction != 0 && a.fields.TargetSystem != 0 {
			row.RequestCode = a.mapper.GetRequestCode(
				issue.FieldValue(a.fields.AccountAction),
				issue.FieldValue(a.fields.TargetSystem),
			)
		}
		rows = append(rows, row)
	}
	report.Rows = rows
	return report
}

// beginningOfWeek returns Monday 00:00 of t's calendar week.
func beginningOfWeek(t time.Time) time.Time {
	daysBack := int(t.Weekday()) - int(time.Monday)
	if daysBack < 0 {
		daysBack += 7 // Sunday belongs to the preceding Monday's week
	}
	day := t.AddDate(0, 0, -daysBack)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
