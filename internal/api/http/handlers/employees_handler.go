package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/directory"
	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/internal/fields"
	apperrors "github.com/nysenate/audit-utils/pkg/util/errorutil"
)

// EmployeesHandler exposes directory search and autofill endpoints.
type EmployeesHandler struct {
	source  directory.Source
	mapping fields.Mapping
	logger  *zap.Logger
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(source directory.Source, mapping fields.Mapping, logger *zap.Logger) *EmployeesHandler {
	return &EmployeesHandler{source: source, mapping: mapping, logger: logger}
}

// Search handles GET /employees/search.
func (h *EmployeesHandler) Search(c *fiber.Ctx) error {
	query := sanitizeSearchQuery(c.Query("q"))
	if query == "" {
		return apperrors.NewValidationError("Search query cannot be empty", nil)
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	employees, err := h.source.SearchEmployees(c.UserContext(), query, limit, offset)
	if err != nil {
		h.logger.Error("employee search failed", zap.String("query", query), zap.Error(err))
		return err
	}

	mapped := make([]fiber.Map, 0, len(employees))
	for i := range employees {
		mapped = append(mapped, employeeResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{
		"employees": mapped,
		"total":     len(mapped),
		"offset":    offset,
		"limit":     limit,
		"has_more":  len(mapped) == limit,
	})
}

// Get handles GET /employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("invalid employee id", nil)
	}

	employee, err := h.source.EmployeeByID(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	if employee == nil {
		return apperrors.NewNotFound("employee", nil)
	}
	return c.JSON(fiber.Map{"employee": employeeResponse(employee)})
}

// FieldMappings handles GET /employees/field_mappings: the custom-field
// input names the autofill frontend writes into.
func (h *EmployeesHandler) FieldMappings(c *fiber.Ctx) error {
	ids := h.mapping.AutofillFieldIDs()
	mappings := make(map[string]string, len(ids))
	for key, fieldID := range ids {
		mappings[key+"_field"] = fmt.Sprintf("issue_custom_field_values_%d", fieldID)
	}
	return c.JSON(fiber.Map{"field_mappings": mappings})
}

func employeeResponse(e *domain.Employee) fiber.Map {
	status := "Inactive"
	if e.Active {
		status = "Active"
	}
	return fiber.Map{
		"employee_id": e.EmployeeID,
		"name":        e.DisplayName(),
		"email":       e.Email,
		"phone":       e.WorkPhone,
		"status":      status,
		"uid":         e.UID,
		"office":      e.RespCenterDisplayName(),
		"location":    e.LocationDisplayName(),
	}
}

// sanitizeSearchQuery strips markup-significant characters and caps length.
func sanitizeSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	replacer := strings.NewReplacer("<", "", ">", "", "'", "", `"`, "", "&", "")
	query = replacer.Replace(query)
	if len(query) > 100 {
		query = query[:100]
	}
	return query
}
