package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/api/dto"
	"github.com/nysenate/audit-utils/internal/reporting"
	apperrors "github.com/nysenate/audit-utils/pkg/util/errorutil"
)

const defaultTargetSystem = "Oracle / SFMS"

// ReportsHandler exposes the daily, weekly, and monthly report endpoints.
type ReportsHandler struct {
	daily   *reporting.DailyAggregator
	weekly  *reporting.WeeklyAggregator
	monthly *reporting.MonthlyAggregator
	loc     *time.Location
	logger  *zap.Logger

	// Now is the clock used for parameter defaults; overridable in tests.
	Now func() time.Time
}

// NewReportsHandler constructs handler.
func NewReportsHandler(daily *reporting.DailyAggregator, weekly *reporting.WeeklyAggregator, monthly *reporting.MonthlyAggregator, loc *time.Location, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{
		daily:   daily,
		weekly:  weekly,
		monthly: monthly,
		loc:     loc,
		logger:  logger,
		Now:     time.Now,
	}
}

// Daily handles GET /reports/daily.
//
// With mode=day the end_date parameter selects a single calendar day.
// Otherwise start_date and end_date bound the window; omitted bounds fall
// back to the aggregator defaults.
func (h *ReportsHandler) Daily(c *fiber.Ctx) error {
	var from, to time.Time

	if c.Query("mode") == "day" {
		day, err := h.parseDateParam(c.Query("end_date"))
		if err != nil {
			return err
		}
		if !day.IsZero() {
			from = day
			to = endOfDay(day)
		}
	} else {
		var err error
		if from, err = h.parseDateParam(c.Query("start_date")); err != nil {
			return err
		}
		if to, err = h.parseDateParam(c.Query("end_date")); err != nil {
			return err
		}
		if !to.IsZero() {
			to = endOfDay(to)
		}
	}

	if !from.IsZero() && !to.IsZero() {
		if err := h.validateDateRange(from, to); err != nil {
			return err
		}
	}

	report := h.daily.Generate(c.UserContext(), from, to)
	if !report.Success() {
		return reportFailure(report.Errors)
	}

	if wantsCSV(c) {
		body, err := dto.DailyCSV(report.Rows)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		filename := "daily_report_" + h.Now().In(h.loc).Format("20060102") + ".csv"
		return sendCSV(c, filename, body)
	}
	return c.JSON(report)
}

// Weekly handles GET /reports/weekly.
func (h *ReportsHandler) Weekly(c *fiber.Ctx) error {
	report := h.weekly.Generate(c.UserContext())
	if !report.Success() {
		return reportFailure(report.Errors)
	}

	if wantsCSV(c) {
		body, err := dto.WeeklyCSV(report.Rows)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		filename := "weekly_report_" + h.Now().In(h.loc).Format("20060102") + ".csv"
		return sendCSV(c, filename, body)
	}
	return c.JSON(report)
}

// Monthly handles GET /reports/monthly.
//
// target_system defaults to the primary system. mode=current snapshots the
// present moment; otherwise month and year select the first instant of the
// chosen month (defaulting to the current one).
func (h *ReportsHandler) Monthly(c *fiber.Ctx) error {
	targetSystem := c.Query("target_system")
	if strings.TrimSpace(targetSystem) == "" {
		targetSystem = defaultTargetSystem
	}

	mode := c.Query("mode", "monthly")
	now := h.Now().In(h.loc)

	var asOf time.Time
	filenameSuffix := "current"
	if mode != "current" {
		month := c.QueryInt("month", int(now.Month()))
		year := c.QueryInt("year", now.Year())
		if month < 1 || month > 12 {
			return apperrors.NewValidationError(fmt.Sprintf("Invalid month: %d", month), nil)
		}
		asOf = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, h.loc)
		filenameSuffix = asOf.Format("200601")
	} else {
		asOf = now
	}

	report := h.monthly.Generate(c.UserContext(), targetSystem, asOf)
	if !report.Success() {
		return reportFailure(report.Errors)
	}

	if wantsCSV(c) {
		body, err := dto.MonthlyCSV(report.Rows)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		filename := fmt.Sprintf("monthly_report_%s_%s.csv", parameterize(targetSystem), filenameSuffix)
		return sendCSV(c, filename, body)
	}
	return c.JSON(report)
}

// parseDateParam parses an optional YYYY-MM-DD query value at midnight in
// the reporting time zone. Blank values return the zero time.
func (h *ReportsHandler) parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, h.loc)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("Invalid date: %s", value), nil)
	}
	return parsed, nil
}

// validateDateRange enforces the daily report window limits: start before
// end, no more than 7 days in the past, no more than 1 day in the future.
func (h *ReportsHandler) validateDateRange(from, to time.Time) error {
	if from.After(to) {
		return apperrors.NewValidationError("Start date must be before end date", nil)
	}

	now := h.Now().In(h.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	earliest := today.AddDate(0, 0, -7)
	latest := endOfDay(today.AddDate(0, 0, 1))

	if from.Before(earliest) {
		return apperrors.NewValidationError("Start date cannot be more than 7 days in the past", nil)
	}
	if from.After(latest) || to.After(latest) {
		return apperrors.NewValidationError("Date cannot be more than 1 day in the future", nil)
	}
	return nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func wantsCSV(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Query("format"), "csv")
}

func sendCSV(c *fiber.Ctx, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(http.StatusOK).Send(body)
}

func reportFailure(errs []string) error {
	return &apperrors.DomainError{
		Code:       "REPORT_FAILED",
		Message:    strings.Join(errs, "; "),
		HTTPStatus: http.StatusBadGateway,
	}
}

// parameterize lowercases and collapses non-alphanumeric runs to hyphens
// for filename-safe target system names.
func parameterize(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
