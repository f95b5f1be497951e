package postgres

import (
	"context"
	"fmt"

	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/observability"
	"github.com/geocoder89/timehub/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TimeLogsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTimeLogsRepo(pool *pgxpool.Pool, prom *observability.Prom) *TimeLogsRepo {
	return &TimeLogsRepo{pool: pool, prom: prom}
}

func (r *TimeLogsRepo) Create(ctx context.Context, tl timelog.TimeLog) error {
	return r.prom.ObserveDB("time_logs.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO time_logs (id, project_id, user_id, hours, notes, date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6::date, $7)
		`, tl.ID, tl.ProjectID, tl.UserID, tl.Hours, tl.Notes, tl.Date, tl.CreatedAt)
		return err
	})
}

// ListByUser returns userID's entries joined with the project name.
func (r *TimeLogsRepo) ListByUser(ctx context.Context, userID string, page timelog.Page) ([]timelog.TimeLog, *string, bool, error) {
	return r.listCursor(ctx, "time_logs.list_by_user", "tl.user_id = $1", userID, page)
}

// ListByProject returns a project's entries joined with the employee full name.
func (r *TimeLogsRepo) ListByProject(ctx context.Context, projectID string, page timelog.Page) ([]timelog.TimeLog, *string, bool, error) {
	return r.listCursor(ctx, "time_logs.list_by_project", "tl.project_id = $1", projectID, page)
}

func (r *TimeLogsRepo) listCursor(
	ctx context.Context,
	op string,
	scope string,
	scopeArg string,
	page timelog.Page,
) (items []timelog.TimeLog, nextCursor *string, hasMore bool, err error) {
	q := `
		SELECT tl.id, tl.project_id, tl.user_id, tl.hours, tl.notes,
		       to_char(tl.date, 'YYYY-MM-DD'), tl.created_at,
		       p.name, pr.full_name
		FROM time_logs tl
		JOIN projects p ON p.id = tl.project_id
		JOIN profiles pr ON pr.id = tl.user_id
		WHERE ` + scope

	args := []any{scopeArg}
	argsPos := 2

	// DESC keyset: fetch rows "older" than cursor
	if page.AfterID != "" {
		q += fmt.Sprintf(" AND (tl.date, tl.created_at, tl.id) < ($%d::date, $%d, $%d::uuid)", argsPos, argsPos+1, argsPos+2)
		args = append(args, page.AfterDate, page.AfterCreatedAt, page.AfterID)
		argsPos += 3
	}

	q += " ORDER BY tl.date DESC, tl.created_at DESC, tl.id DESC"

	if page.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d", argsPos)
		args = append(args, page.Limit+1)
	}

	var rows pgx.Rows

	err = r.prom.ObserveDB(op, func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, q, args...)
		return qerr
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]timelog.TimeLog, 0)

	for rows.Next() {
		var tl timelog.TimeLog
		if scanErr := rows.Scan(
			&tl.ID, &tl.ProjectID, &tl.UserID, &tl.Hours, &tl.Notes,
			&tl.Date, &tl.CreatedAt,
			&tl.ProjectName, &tl.EmployeeName,
		); scanErr != nil {
			return nil, nil, false, scanErr
		}
		out = append(out, tl)
	}

	if rows.Err() != nil {
		return nil, nil, false, rows.Err()
	}

	if page.Limit > 0 && len(out) > page.Limit {
		hasMore = true
		out = out[:page.Limit]
		last := out[len(out)-1]

		cur, encErr := utils.EncodeTimeLogCursor(last.Date, last.CreatedAt, last.ID)
		if encErr != nil {
			return nil, nil, false, encErr
		}
		nextCursor = &cur
	}

	return out, nextCursor, hasMore, nil
}
