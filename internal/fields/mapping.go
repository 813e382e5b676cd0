// Package fields carries the resolved custom-field identifiers the audit
// core depends on. Resolution from field names to IDs happens outside this
// service; components receive an already-resolved Mapping at construction.
package fields

import (
	"sort"

	"github.com/nysenate/audit-utils/pkg/util/errorutil"
)

// Mapping holds resolved issue custom-field IDs. Zero means unresolved.
type Mapping struct {
	EmployeeID    int64
	TargetSystem  int64
	AccountAction int64

	// Optional enrichment and autofill fields.
	EmployeeName   int64
	EmployeeUID    int64
	EmployeeEmail  int64
	EmployeePhone  int64
	EmployeeStatus int64
	EmployeeOffice int64
}

// requiredFields lists the fields status derivation cannot run without.
var requiredFields = []struct {
	name string
	get  func(Mapping) int64
}{
	{"Employee ID", func(m Mapping) int64 { return m.EmployeeID }},
	{"Target System", func(m Mapping) int64 { return m.TargetSystem }},
	{"Account Action", func(m Mapping) int64 { return m.AccountAction }},
}

// Validate checks that all required fields are resolved. A failure is a
// fatal precondition reported as a configuration error.
func (m Mapping) Validate() error {
	var missing []string
	for _, f := range requiredFields {
		if f.get(m) == 0 {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	msg := "required custom fields not configured:"
	for _, name := range missing {
		msg += " " + name + ","
	}
	return errorutil.NewConfigurationError(msg[:len(msg)-1])
}

// FieldStatus describes the resolution state of one configurable field.
type FieldStatus struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	FieldID  int64  `json:"field_id,omitempty"`
	Required bool   `json:"required"`
	Resolved bool   `json:"resolved"`
}

// Statuses reports the resolution state of every configurable field, for
// the settings status endpoint.
func (m Mapping) Statuses() []FieldStatus {
	all := []struct {
		key      string
		name     string
		id       int64
		required bool
	}{
		{"employee_id_field_id", "Employee ID", m.EmployeeID, true},
		{"target_system_field_id", "Target System", m.TargetSystem, true},
		{"account_action_field_id", "Account Action", m.AccountAction, true},
		{"employee_name_field_id", "Employee Name", m.EmployeeName, false},
		{"employee_uid_field_id", "Employee UID", m.EmployeeUID, false},
		{"employee_email_field_id", "Employee Email", m.EmployeeEmail, false},
		{"employee_phone_field_id", "Employee Phone", m.EmployeePhone, false},
		{"employee_status_field_id", "Employee Status", m.EmployeeStatus, false},
		{"employee_office_field_id", "Employee Office", m.EmployeeOffice, false},
	}
	result := make([]FieldStatus, 0, len(all))
	for _, f := range all {
		result = append(result, FieldStatus{
			Key:      f.key,
			Name:     f.name,
			FieldID:  f.id,
			Required: f.required,
			Resolved: f.id != 0,
		})
	}
	return result
}

// AutofillFieldIDs returns the configured autofill field IDs keyed by
// purpose, omitting unresolved fields.
func (m Mapping) AutofillFieldIDs() map[string]int64 {
	candidates := map[string]int64{
		"employee_id":     m.EmployeeID,
		"employee_name":   m.EmployeeName,
		"employee_email":  m.EmployeeEmail,
		"employee_phone":  m.EmployeePhone,
		"employee_status": m.EmployeeStatus,
		"employee_uid":    m.EmployeeUID,
		"employee_office": m.EmployeeOffice,
	}
	out := make(map[string]int64, len(candidates))
	for key, id := range candidates {
		if id != 0 {
			out[key] = id
		}
	}
	return out
}
