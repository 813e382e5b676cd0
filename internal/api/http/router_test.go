package http

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nysenate/audit-utils/internal/domain"
)

func closedIssue(id int64, employeeID, system, action string, closedOn time.Time) domain.Issue {
	return domain.Issue{
		ID:        id,
		Subject:   "Account request",
		ClosedOn:  &closedOn,
		CreatedOn: closedOn.Add(-24 * time.Hour),
		UpdatedOn: closedOn,
		Fields: map[int64]string{
			1: employeeID,
			2: system,
			3: action,
			4: "Jane Smith",
			5: "jsmith",
		},
	}
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/reports/weekly", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthLiveIsPublic(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	req, _ := http.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDailyReportJSON(t *testing.T) {
	posted := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{changes: []domain.StatusChange{{
		TransactionCode: "APP",
		PostDateTime:    &posted,
		Employee:        domain.Employee{EmployeeID: 1234, FullName: "Jane Smith"},
	}}}
	store := &fakeStore{issues: []domain.Issue{
		closedIssue(10, "1234", "AIX", "Add", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
	}}
	env := newTestEnv(store, dir)

	resp, err := env.get("/api/v1/reports/daily?mode=day&end_date=2026-03-04")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Rows []struct {
			EmployeeID       string `json:"employee_id"`
			EmployeeName     string `json:"employee_name"`
			TransactionCodes string `json:"transaction_codes"`
			AccountStatuses  []struct {
				RequestCode string `json:"request_code"`
			} `json:"account_statuses"`
		} `json:"rows"`
	}
	decodeBody(t, resp, &report)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "1234", report.Rows[0].EmployeeID)
	assert.Equal(t, "Jane Smith", report.Rows[0].EmployeeName)
	assert.Equal(t, "APP", report.Rows[0].TransactionCodes)
	require.Len(t, report.Rows[0].AccountStatuses, 1)
	assert.Equal(t, "AIXA", report.Rows[0].AccountStatuses[0].RequestCode)
}

func TestDailyReportCSV(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/reports/daily?format=csv")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "daily_report_20260304.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "Employee Name", records[0][0])
}

func TestDailyReportRejectsInvertedRange(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/reports/daily?start_date=2026-03-04&end_date=2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, resp, &payload)
	assert.Equal(t, "Start date must be before end date", payload.Error.Message)
}

func TestDailyReportRejectsStaleStart(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	// clock is fixed at 2026-03-04; anything before 02-25 is too old
	resp, err := env.get("/api/v1/reports/daily?start_date=2026-02-20&end_date=2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDailyReportRejectsFutureDates(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/reports/daily?start_date=2026-03-04&end_date=2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDailyReportRejectsMalformedDate(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/reports/daily?start_date=03%2F04%2F2026")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWeeklyReportJSON(t *testing.T) {
	store := &fakeStore{issues: []domain.Issue{
		{
			ID:         20,
			Subject:    "New Oracle account",
			StatusName: "In Progress",
			CreatedOn:  time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
			UpdatedOn:  time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC),
			Fields:     map[int64]string{1: "1234", 2: "Oracle / SFMS", 3: "Add", 5: "jsmith"},
		},
	}}
	env := newTestEnv(store, &fakeDirectory{})

	resp, err := env.get("/api/v1/reports/weekly")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Rows []struct {
			IssueID     int64  `json:"issue_id"`
			EmployeeID  string `json:"employee_id"`
			EmployeeUID string `json:"employee_uid"`
			RequestCode string `json:"request_code"`
		} `json:"rows"`
	}
	decodeBody(t, resp, &report)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, int64(20), report.Rows[0].IssueID)
	assert.Equal(t, "1234", report.Rows[0].EmployeeID)
	assert.Equal(t, "jsmith", report.Rows[0].EmployeeUID)
	assert.Equal(t, "USRA", report.Rows[0].RequestCode)
}

func TestMonthlyReportSnapshot(t *testing.T) {
	store := &fakeStore{
		issues: []domain.Issue{
			closedIssue(30, "1234", "AIX", "Add", time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)),
			closedIssue(31, "1234", "AIX", "Delete", time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)),
		},
		possibleValues: map[int64][]string{2: {"Oracle / SFMS", "AIX", "SFS"}},
	}
	env := newTestEnv(store, &fakeDirectory{})

	// snapshot at Feb 1: only the January Add is visible
	resp, err := env.get("/api/v1/reports/monthly?target_system=AIX&month=2&year=2026")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Rows []struct {
			EmployeeID    string `json:"employee_id"`
			Status        string `json:"status"`
			AccountAction string `json:"account_action"`
			IssueID       int64  `json:"issue_id"`
		} `json:"rows"`
	}
	decodeBody(t, resp, &report)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "1234", report.Rows[0].EmployeeID)
	assert.Equal(t, "active", report.Rows[0].Status)
	assert.Equal(t, int64(30), report.Rows[0].IssueID)
}

func TestMonthlyReportRejectsUnknownSystem(t *testing.T) {
	store := &fakeStore{possibleValues: map[int64][]string{2: {"Oracle / SFMS", "AIX"}}}
	env := newTestEnv(store, &fakeDirectory{})

	resp, err := env.get("/api/v1/reports/monthly?target_system=Mainframe&mode=current")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestMonthlyReportRejectsInvalidMonth(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/reports/monthly?month=13&year=2026")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMonthlyReportCSVFilename(t *testing.T) {
	store := &fakeStore{possibleValues: map[int64][]string{2: {"Oracle / SFMS"}}}
	env := newTestEnv(store, &fakeDirectory{})

	resp, err := env.get("/api/v1/reports/monthly?month=2&year=2026&format=csv")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "monthly_report_oracle-sfms_202602.csv")
}

func TestEmployeeSearch(t *testing.T) {
	dir := &fakeDirectory{employees: []domain.Employee{
		{EmployeeID: 1234, FullName: "Jane Smith", UID: "jsmith", Active: true},
	}}
	env := newTestEnv(&fakeStore{}, dir)

	resp, err := env.get("/api/v1/employees/search?q=smith")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Employees []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"employees"`
		Total int `json:"total"`
		Limit int `json:"limit"`
	}
	decodeBody(t, resp, &payload)
	require.Len(t, payload.Employees, 1)
	assert.Equal(t, "Jane Smith", payload.Employees[0].Name)
	assert.Equal(t, "Active", payload.Employees[0].Status)
	assert.Equal(t, 1, payload.Total)
	assert.Equal(t, 20, payload.Limit)
}

func TestEmployeeSearchRejectsBlankQuery(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/employees/search?q=%20%20")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmployeeByIDNotFound(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/employees/99")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFieldMappings(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/employees/field_mappings")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		FieldMappings map[string]string `json:"field_mappings"`
	}
	decodeBody(t, resp, &payload)
	assert.Equal(t, "issue_custom_field_values_1", payload.FieldMappings["employee_id_field"])
	assert.Equal(t, "issue_custom_field_values_4", payload.FieldMappings["employee_name_field"])
	assert.NotContains(t, payload.FieldMappings, "employee_email_field")
}

func TestSettingsFieldStatus(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/settings/field_status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Valid  bool `json:"valid"`
		Status []struct {
			Key      string `json:"key"`
			Resolved bool   `json:"resolved"`
		} `json:"status"`
	}
	decodeBody(t, resp, &payload)
	assert.True(t, payload.Valid)
	assert.NotEmpty(t, payload.Status)
}

func TestSettingsRequestCodes(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	resp, err := env.get("/api/v1/settings/request_codes")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Systems []struct {
			TargetSystem string `json:"target_system"`
		} `json:"systems"`
		Codes []string `json:"codes"`
	}
	decodeBody(t, resp, &payload)
	assert.NotEmpty(t, payload.Systems)
	assert.Contains(t, payload.Codes, "USRA")
}

func TestRequestIDHeaderEcho(t *testing.T) {
	env := newTestEnv(&fakeStore{}, &fakeDirectory{})

	req, _ := http.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestParameterize(t *testing.T) {
	// indirectly covered by the CSV filename test; keep direct cases here
	cases := map[string]string{
		"Oracle / SFMS":     "oracle-sfms",
		"OGS Swiper Access": "ogs-swiper-access",
		"AIX":               "aix",
	}
	for in, want := range cases {
		resp, err := newTestEnv(&fakeStore{possibleValues: map[int64][]string{2: {in}}}, &fakeDirectory{}).
			get("/api/v1/reports/monthly?mode=current&format=csv&target_system=" + strings.ReplaceAll(in, " ", "%20"))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "monthly_report_"+want+"_current.csv")
	}
}
