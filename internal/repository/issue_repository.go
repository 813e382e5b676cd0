package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nysenate/audit-utils/internal/domain"
)

// IssueStore is the read-only view of the workflow issue store the audit
// core queries. Implementations must return FetchClosed results ordered by
// closure time descending, ties broken by issue ID descending.
type IssueStore interface {
	// FindIssueIDsByFieldValue returns the IDs of issues whose custom field
	// fieldID holds exactly value.
	FindIssueIDsByFieldValue(ctx context.Context, fieldID int64, value string) ([]int64, error)
	// FetchClosed returns closed issues (non-null closure timestamp) among
	// ids, with custom field values loaded. A non-nil closedBefore excludes
	// issues closed after it.
	FetchClosed(ctx context.Context, ids []int64, closedBefore *time.Time) ([]domain.Issue, error)
	// FetchOpen returns not-closed issues among ids, with custom field
	// values loaded.
	FetchOpen(ctx context.Context, ids []int64) ([]domain.Issue, error)
	// FetchActiveInWindow returns issues created or updated inside
	// [from, to], ordered by update time descending.
	FetchActiveInWindow(ctx context.Context, from, to time.Time) ([]domain.Issue, error)
	// FieldValues bulk-loads the values of fieldIDs across issueIDs,
	// keyed issue ID -> field ID -> value.
	FieldValues(ctx context.Context, issueIDs, fieldIDs []int64) (map[int64]map[int64]string, error)
	// PossibleValues returns the enumerated value set of a list-format
	// custom field, or nil when the field is not enumerable.
	PossibleValues(ctx context.Context, fieldID int64) ([]string, error)
}

type issueStore struct {
	pool *pgxpool.Pool
}

// NewIssueStore instantiates the postgres-backed issue store.
func NewIssueStore(pool *pgxpool.Pool) IssueStore {
	return &issueStore{pool: pool}
}

func (r *issueStore) FindIssueIDsByFieldValue(ctx context.Context, fieldID int64, value string) ([]int64, error) {
	const query = `
        SELECT customized_id FROM custom_values
        WHERE customized_type = 'Issue' AND custom_field_id = $1 AND value = $2`
	rows, err := r.pool.Query(ctx, query, fieldID, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *issueStore) FetchClosed(ctx context.Context, ids []int64, closedBefore *time.Time) ([]domain.Issue, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
        SELECT i.id, i.subject, s.name, s.is_closed, i.closed_on, i.created_on, i.updated_on
        FROM issues i
        JOIN issue_statuses s ON s.id = i.status_id
        WHERE i.id = ANY($1) AND s.is_closed AND i.closed_on IS NOT NULL`
	args := []any{ids}
	if closedBefore != nil {
		query += ` AND i.closed_on <= $2`
		args = append(args, *closedBefore)
	}
	query += ` ORDER BY i.closed_on DESC, i.id DESC`

	return r.fetchWithFields(ctx, query, args...)
}

func (r *issueStore) FetchOpen(ctx context.Context, ids []int64) ([]domain.Issue, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
        SELECT i.id, i.subject, s.name, s.is_closed, i.closed_on, i.created_on, i.updated_on
        FROM issues i
        JOIN issue_statuses s ON s.id = i.status_id
        WHERE i.id = ANY($1) AND NOT s.is_closed
        ORDER BY i.id`
	return r.fetchWithFields(ctx, query, ids)
}

func (r *issueStore) FetchActiveInWindow(ctx context.Context, from, to time.Time) ([]domain.Issue, error) {
	const query = `
        SELECT i.id, i.subject, s.name, s.is_closed, i.closed_on, i.created_on, i.updated_on
        FROM issues i
        JOIN issue_statuses s ON s.id = i.status_id
        WHERE (i.created_on >= $1 AND i.created_on <= $2)
           OR (i.updated_on >= $1 AND i.updated_on <= $2)
        ORDER BY i.updated_on DESC`
	return r.fetchWithFields(ctx, query, from, to)
}

// fetchWithFields runs an issue query then bulk-loads custom field values
// for the result set in a second round trip.
func (r *issueStore) fetchWithFields(ctx context.Context, query string, args ...any) ([]domain.Issue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues, err := scanIssues(rows)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return issues, nil
	}

	ids := make([]int64, len(issues))
	for i := range issues {
		ids[i] = issues[i].ID
	}
	values, err := r.loadFieldValues(ctx, ids, nil)
	if err != nil {
		return nil, err
	}
	for i := range issues {
		issues[i].Fields = values[issues[i].ID]
	}
	return issues, nil
}

func (r *issueStore) FieldValues(ctx context.Context, issueIDs, fieldIDs []int64) (map[int64]map[int64]string, error) {
	if len(issueIDs) == 0 || len(fieldIDs) == 0 {
		return map[int64]map[int64]string{}, nil
	}
	return r.loadFieldValues(ctx, issueIDs, fieldIDs)
}

func (r *issueStore) loadFieldValues(ctx context.Context, issueIDs, fieldIDs []int64) (map[int64]map[int64]string, error) {
	query := `
        SELECT customized_id, custom_field_id, value FROM custom_values
        WHERE customized_type = 'Issue' AND customized_id = ANY($1)`
	args := []any{issueIDs}
	if len(fieldIDs) > 0 {
		query += ` AND custom_field_id = ANY($2)`
		args = append(args, fieldIDs)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]map[int64]string)
	for rows.Next() {
		var issueID, fieldID int64
		var value *string
		if err := rows.Scan(&issueID, &fieldID, &value); err != nil {
			return nil, err
		}
		if value == nil || *value == "" {
			continue
		}
		if result[issueID] == nil {
			result[issueID] = make(map[int64]string)
		}
		result[issueID][fieldID] = *value
	}
	return result, rows.Err()
}

func (r *issueStore) PossibleValues(ctx context.Context, fieldID int64) ([]string, error) {
	const query = `SELECT possible_values FROM custom_fields WHERE id = $1`
	var values []string
	if err := r.pool.QueryRow(ctx, query, fieldID).Scan(&values); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return values, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.Subject,
			&issue.StatusName,
			&issue.IsClosed,
			&issue.ClosedOn,
			&issue.CreatedOn,
			&issue.UpdatedOn,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
