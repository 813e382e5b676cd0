// Package directory consumes the employee-directory (ESS) API: status
// change feeds, employee search, and single-employee lookup.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nysenate/audit-utils/internal/config"
	"github.com/nysenate/audit-utils/internal/domain"
	"github.com/nysenate/audit-utils/pkg/util/errorutil"
)

// Source is the read-only directory surface the reporting layer consumes.
type Source interface {
	// StatusChanges returns employee status-change events posted in
	// [from, to]. Dates are compared at day granularity by the API.
	StatusChanges(ctx context.Context, from, to time.Time) ([]domain.StatusChange, error)
	// SearchEmployees performs a name/uid substring search.
	SearchEmployees(ctx context.Context, term string, limit, offset int) ([]domain.Employee, error)
	// EmployeeByID looks up one employee, returning nil when not found.
	EmployeeByID(ctx context.Context, employeeID int64) (*domain.Employee, error)
}

// Client talks to the ESS API over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a directory client from configuration.
func NewClient(cfg config.DirectoryConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// StatusChanges implements Source.
func (c *Client) StatusChanges(ctx context.Context, from, to time.Time) ([]domain.StatusChange, error) {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}

	var envelope struct {
		Success bool              `json:"success"`
		Result  []apiStatusChange `json:"result"`
	}
	if err := c.getJSON(ctx, "/api/v1/bachelp/statusChanges", params, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return []domain.StatusChange{}, nil
	}

	changes := make([]domain.StatusChange, 0, len(envelope.Result))
	for i := range envelope.Result {
		changes = append(changes, envelope.Result[i].toDomain())
	}
	return changes, nil
}

// SearchEmployees implements Source. Limit is clamped to [1, 1000] with a
// default of 20; negative offsets are treated as zero.
func (c *Client) SearchEmployees(ctx context.Context, term string, limit, offset int) ([]domain.Employee, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	params := url.Values{}
	if term != "" {
		params.Set("term", term)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var envelope struct {
		Success bool          `json:"success"`
		Result  []apiEmployee `json:"result"`
	}
	if err := c.getJSON(ctx, "/api/v1/bachelp/employee/search", params, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return []domain.Employee{}, nil
	}

	employees := make([]domain.Employee, 0, len(envelope.Result))
	for i := range envelope.Result {
		employees = append(employees, envelope.Result[i].toDomain())
	}
	return employees, nil
}

// EmployeeByID implements Source.
func (c *Client) EmployeeByID(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	if employeeID <= 0 {
		return nil, nil
	}

	var envelope struct {
		Success  bool         `json:"success"`
		Employee *apiEmployee `json:"employee"`
	}
	path := fmt.Sprintf("/api/v1/bachelp/employee/%d", employeeID)
	if err := c.getJSON(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success || envelope.Employee == nil {
		return nil, nil
	}
	employee := envelope.Employee.toDomain()
	return &employee, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return errorutil.NewUpstreamError("employee directory", err)
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errorutil.NewUpstreamError("employee directory", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("directory request failed", zap.String("path", path), zap.Error(err))
		return errorutil.NewUpstreamError("employee directory", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errorutil.NewUpstreamError("employee directory", err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			c.logger.Error("directory returned invalid JSON", zap.String("path", path), zap.Error(err))
			return errorutil.NewUpstreamError("employee directory", err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Error("directory authentication failed", zap.String("path", path))
		return errorutil.NewUpstreamError("employee directory", fmt.Errorf("authentication failed"))
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Warn("directory resource not found", zap.String("path", path))
		return nil
	default:
		c.logger.Error("directory request error",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return errorutil.NewUpstreamError("employee directory",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}
