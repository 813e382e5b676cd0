package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionCodes maps directory transaction codes to their descriptions.
var TransactionCodes = map[string]string{
	"APP": "Employee appointment/hiring",
	"LOC": "Location change",
	"NAM": "Name change",
	"PHO": "Phone number change",
	"RTP": "Re-appointment",
	"LIN": "Line number",
	"EMP": "Termination",
}

// RespCenterHead identifies the responsibility center (office) an employee
// reports to.
type RespCenterHead struct {
	Active        bool
	Code          string
	ShortName     string
	Name          string
	AffiliateCode string
}

// DisplayName prefers the short name, falling back to full name then code.
func (r *RespCenterHead) DisplayName() string {
	if r == nil {
		return ""
	}
	if r.ShortName != "" {
		return r.ShortName
	}
	if r.Name != "" {
		return r.Name
	}
	return r.Code
}

// FullDisplayName prefers the full name.
func (r *RespCenterHead) FullDisplayName() string {
	if r == nil {
		return ""
	}
	if r.Name != "" {
		return r.Name
	}
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.Code
}

// Location is an employee work location.
type Location struct {
	ID             string
	Code           string
	LocationType   string
	Description    string
	Active         bool
	RespCenterHead *RespCenterHead
}

// DisplayName prefers the description, falling back to code then ID.
func (l *Location) DisplayName() string {
	if l == nil {
		return ""
	}
	if l.Description != "" {
		return l.Description
	}
	if l.Code != "" {
		return l.Code
	}
	return l.ID
}

// Employee is an employee-directory snapshot.
type Employee struct {
	EmployeeID int64
	UID        string
	FirstName  string
	LastName   string
	FullName   string
	Email      string
	WorkPhone  string
	Active     bool
	Location   *Location
}

// DisplayName returns the full name, composed from parts when absent.
func (e *Employee) DisplayName() string {
	if e.FullName != "" {
		return e.FullName
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", e.FirstName, e.LastName))
}

// RespCenterDisplayName returns the employee's office display name, if any.
func (e *Employee) RespCenterDisplayName() string {
	if e.Location == nil {
		return ""
	}
	return e.Location.RespCenterHead.DisplayName()
}

// LocationDisplayName returns the employee's work location display name.
func (e *Employee) LocationDisplayName() string {
	return e.Location.DisplayName()
}

// StatusChange is one employee status-change event from the directory.
type StatusChange struct {
	TransactionCode string
	PostDateTime    *time.Time
	Employee        Employee
}

// TransactionDescription resolves the human-readable meaning of the code,
// passing the raw code through when it is not a known vocabulary entry.
func (s *StatusChange) TransactionDescription() string {
	if desc, ok := TransactionCodes[s.TransactionCode]; ok {
		return desc
	}
	return s.TransactionCode
}
