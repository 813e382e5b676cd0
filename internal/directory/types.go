package directory

import (
	"time"

	"github.com/nysenate/audit-utils/internal/domain"
)

// Wire shapes for the ESS API. Decoding happens once here at the client
// boundary; domain objects never see raw payloads.

type apiRespCenterHead struct {
	Active        bool   `json:"active"`
	Code          string `json:"code"`
	ShortName     string `json:"shortName"`
	Name          string `json:"name"`
	AffiliateCode string `json:"affiliateCode"`
}

type apiLocation struct {
	LocID               string             `json:"locId"`
	Code                string             `json:"code"`
	LocationType        string             `json:"locationType"`
	LocationDescription string             `json:"locationDescription"`
	Active              bool               `json:"active"`
	RespCenterHead      *apiRespCenterHead `json:"respCenterHead"`
}

type apiEmployee struct {
	EmployeeID int64        `json:"employeeId"`
	UID        string       `json:"uid"`
	FirstName  string       `json:"firstName"`
	LastName   string       `json:"lastName"`
	FullName   string       `json:"fullName"`
	Email      string       `json:"email"`
	WorkPhone  string       `json:"workPhone"`
	Active     bool         `json:"active"`
	Location   *apiLocation `json:"location"`
}

// apiStatusChange carries the employee snapshot inline with the change.
type apiStatusChange struct {
	apiEmployee
	TransactionCode string `json:"transactionCode"`
	PostDateTime    string `json:"postDateTime"`
}

func (a *apiRespCenterHead) toDomain() *domain.RespCenterHead {
	if a == nil {
		return nil
	}
	return &domain.RespCenterHead{
		Active:        a.Active,
		Code:          a.Code,
		ShortName:     a.ShortName,
		Name:          a.Name,
		AffiliateCode: a.AffiliateCode,
	}
}

func (a *apiLocation) toDomain() *domain.Location {
	if a == nil {
		return nil
	}
	return &domain.Location{
		ID:             a.LocID,
		Code:           a.Code,
		LocationType:   a.LocationType,
		Description:    a.LocationDescription,
		Active:         a.Active,
		RespCenterHead: a.RespCenterHead.toDomain(),
	}
}

func (a *apiEmployee) toDomain() domain.Employee {
	return domain.Employee{
		EmployeeID: a.EmployeeID,
		UID:        a.UID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		FullName:   a.FullName,
		Email:      a.Email,
		WorkPhone:  a.WorkPhone,
		Active:     a.Active,
		Location:   a.Location.toDomain(),
	}
}

func (a *apiStatusChange) toDomain() domain.StatusChange {
	return domain.StatusChange{
		TransactionCode: a.TransactionCode,
		PostDateTime:    parseAPITime(a.PostDateTime),
		Employee:        a.apiEmployee.toDomain(),
	}
}

// parseAPITime accepts the timestamp shapes the API is known to emit,
// returning nil for blank or unparseable values.
func parseAPITime(value string) *time.Time {
	if value == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
