package domain

import "time"

// AccountAction enumerates the well-known account operations. Target systems
// with custom vocabularies may carry other values; those pass through as-is.
type AccountAction string

const (
	ActionAdd                   AccountAction = "Add"
	ActionDelete                AccountAction = "Delete"
	ActionUpdateAccountAndPrivs AccountAction = "Update Account & Privileges"
	ActionUpdatePrivsOnly       AccountAction = "Update Privileges Only"
	ActionUpdateAccountOnly     AccountAction = "Update Account Only"
)

// AccountStatus is the derived state of one account on one target system.
type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
)

// StatusForAction derives an account status from an action. Delete is the
// only deactivating action; unrecognized actions default to active so an
// unknown vocabulary never blocks status computation.
func StatusForAction(action AccountAction) AccountStatus {
	if action == ActionDelete {
		return StatusInactive
	}
	return StatusActive
}

// AccountStatusRecord is the derived current state of a (employee, system)
// pair, reconstructed from the latest-closed matching issue. Never stored;
// recomputed on every query.
type AccountStatusRecord struct {
	EmployeeID    string
	AccountType   string
	Status        AccountStatus
	IssueID       int64
	ClosedOn      time.Time
	AccountAction AccountAction
	RequestCode   string
}

// OpenRequestRecord represents one currently-open issue with both required
// account fields present. Open issues do not supersede each other.
type OpenRequestRecord struct {
	EmployeeID    string
	AccountType   string
	AccountAction AccountAction
	IssueID       int64
	RequestCode   string
}
