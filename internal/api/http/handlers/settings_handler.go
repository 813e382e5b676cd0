package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/internal/fields"
	"github.com/nysenate/audit-utils/internal/requestcode"
	apperrors "github.com/nysenate/audit-utils/pkg/util/errorutil"
)

// SettingsHandler exposes configuration status and vocabulary endpoints.
type SettingsHandler struct {
	mapping fields.Mapping
	mapper  *requestcode.Mapper
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(mapping fields.Mapping, mapper *requestcode.Mapper) *SettingsHandler {
	return &SettingsHandler{mapping: mapping, mapper: mapper}
}

// FieldStatus handles GET /settings/field_status: per-field resolution
// state plus overall validity of the custom-field configuration.
func (h *SettingsHandler) FieldStatus(c *fiber.Ctx) error {
	var errs []string
	if err := h.mapping.Validate(); err != nil {
		domainErr := apperrors.ToDomainError(err)
		errs = append(errs, domainErr.Message)
	}
	return c.JSON(fiber.Map{
		"status": h.mapping.Statuses(),
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// RequestCodes handles GET /settings/request_codes: the active
// system/action to audit-code mapping.
func (h *SettingsHandler) RequestCodes(c *fiber.Ctx) error {
	systems := make([]fiber.Map, 0)
	for _, system := range h.mapper.AllTargetSystems() {
		actions := make([]fiber.Map, 0)
		for _, action := range h.mapper.ActionsForSystem(system) {
			actions = append(actions, fiber.Map{
				"account_action": action,
				"request_code":   h.mapper.GetRequestCode(action, system),
			})
		}
		systems = append(systems, fiber.Map{
			"target_system": system,
			"actions":       actions,
		})
	}
	return c.JSON(fiber.Map{
		"systems": systems,
		"codes":   h.mapper.AllCodes(),
	})
}

// TransactionCodes handles GET /settings/transaction_codes: the directory
// transaction-code vocabulary used in the daily report.
func (h *SettingsHandler) TransactionCodes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"transaction_codes": domain.TransactionCodes})
}
