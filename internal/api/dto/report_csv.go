package dto

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/internal/reporting"
)

// DailyCSV serializes daily report rows.
func DailyCSV(rows []reporting.DailyRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Employee Name", "Account Status", "Open Tickets", "Transaction Codes",
		"Phone Number", "Office", "Office Location", "Employee ID", "Post Date",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		postDate := ""
		if row.PostDate != nil {
			postDate = row.PostDate.Format("2006-01-02")
		}
		record := []string{
			row.EmployeeName,
			statusCodes(row.AccountStatuses),
			openRequestCodes(row.OpenRequests),
			row.TransactionCodes,
			row.PhoneNumber,
			row.Office,
			row.OfficeLocation,
			row.EmployeeID,
			postDate,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// WeeklyCSV serializes weekly report rows.
func WeeklyCSV(rows []reporting.WeeklyRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Employee UID", "Employee Number", "Request Code",
		"Ticket Description", "Status", "Updated On",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.EmployeeUID,
			row.EmployeeID,
			row.RequestCode,
			row.Subject,
			row.Status,
			row.UpdatedOn.Format("2006-01-02 15:04"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// MonthlyCSV serializes monthly snapshot rows.
func MonthlyCSV(rows []reporting.MonthlyRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Employee Name", "Employee ID", "Employee UID", "Account Status",
		"Last Updated", "Last Issue", "Last Action", "Request Code",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.EmployeeName,
			row.EmployeeID,
			row.EmployeeUID,
			string(row.Status),
			row.ClosedOn.Format("2006-01-02"),
			strconv.FormatInt(row.IssueID, 10),
			string(row.AccountAction),
			row.RequestCode,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// statusCodes flattens account statuses to their request codes, falling
// back to the account type where no code is mapped.
func statusCodes(statuses []domain.AccountStatusRecord) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s.RequestCode != "" {
			parts = append(parts, s.RequestCode)
		} else {
			parts = append(parts, s.AccountType)
		}
	}
	return strings.Join(parts, ", ")
}

func openRequestCodes(requests []domain.OpenRequestRecord) string {
	parts := make([]string, 0, len(requests))
	for _, r := range requests {
		if r.RequestCode != "" {
			parts = append(parts, r.RequestCode)
		} else {
			parts = append(parts, r.AccountType)
		}
	}
	return strings.Join(parts, ", ")
}
