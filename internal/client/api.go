package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/geocoder89/timehub/internal/dashboard"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/domain/timelog"
)

type TimeLogPage struct {
	Items      []timelog.TimeLog `json:"items"`
	NextCursor *string           `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
}

type PageQuery struct {
	Limit  int
	Cursor string
}

func (q PageQuery) encode() string {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Cursor != "" {
		v.Set("cursor", q.Cursor)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	resp, err := c.doAuthRequest(ctx, c.HTTPClient, http.MethodGet, path, nil)
	if err != nil {
		return out, err
	}
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

func postJSON[T any](ctx context.Context, c *Client, path string, body any, expected int) (T, error) {
	var out T
	resp, err := c.doAuthRequest(ctx, c.HTTPClient, http.MethodPost, path, body)
	if err != nil {
		return out, err
	}
	err = decodeJSON(resp, &out, expected)
	return out, err
}

func (c *Client) ManagerDashboard(ctx context.Context) (dashboard.ManagerView, error) {
	return getJSON[dashboard.ManagerView](ctx, c, "/manager")
}

func (c *Client) EmployeeDashboard(ctx context.Context) (dashboard.EmployeeView, error) {
	return getJSON[dashboard.EmployeeView](ctx, c, "/employee")
}

func (c *Client) CreateProject(ctx context.Context, name string) (project.Project, error) {
	return postJSON[project.Project](ctx, c, "/projects", project.CreateProjectRequest{Name: name}, http.StatusCreated)
}

func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	out, err := getJSON[itemsResponse[project.Project]](ctx, c, "/projects")
	return out.Items, err
}

func (c *Client) Employees(ctx context.Context) ([]profile.Profile, error) {
	out, err := getJSON[itemsResponse[profile.Profile]](ctx, c, "/employees")
	return out.Items, err
}

func (c *Client) InviteEmployee(ctx context.Context, projectID, email string) (membership.Invitation, error) {
	path := "/projects/" + url.PathEscape(projectID) + "/invites"
	return postJSON[membership.Invitation](ctx, c, path, membership.InviteRequest{Email: email}, http.StatusCreated)
}

func (c *Client) Invitations(ctx context.Context, projectID string) ([]membership.Membership, error) {
	out, err := getJSON[itemsResponse[membership.Membership]](ctx, c, "/projects/"+url.PathEscape(projectID)+"/invites")
	return out.Items, err
}

func (c *Client) AcceptInvite(ctx context.Context, token string) (membership.Membership, error) {
	return postJSON[membership.Membership](ctx, c, "/invites/accept", membership.RedeemRequest{Token: token}, http.StatusOK)
}

func (c *Client) LogTime(ctx context.Context, req timelog.CreateTimeLogRequest) (timelog.TimeLog, error) {
	return postJSON[timelog.TimeLog](ctx, c, "/time-logs", req, http.StatusCreated)
}

func (c *Client) TimeLogs(ctx context.Context, q PageQuery) (TimeLogPage, error) {
	return getJSON[TimeLogPage](ctx, c, "/time-logs"+q.encode())
}

func (c *Client) ProjectTimeLogs(ctx context.Context, projectID string, q PageQuery) (TimeLogPage, error) {
	return getJSON[TimeLogPage](ctx, c, "/projects/"+url.PathEscape(projectID)+"/time-logs"+q.encode())
}
