package domain

import "time"

// Issue is a read-only view of one workflow ticket in the issue store.
// Custom field values are keyed by resolved field ID; a missing key means
// the field has no value on this issue.
type Issue struct {
	ID         int64
	Subject    string
	StatusName string
	IsClosed   bool
	ClosedOn   *time.Time
	CreatedOn  time.Time
	UpdatedOn  time.Time
	Fields     map[int64]string
}

// FieldValue returns the custom field value for the given field ID, or ""
// when the issue carries no value for it.
func (i *Issue) FieldValue(fieldID int64) string {
	if i.Fields == nil {
		return ""
	}
	return i.Fields[fieldID]
}
