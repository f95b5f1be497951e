package memory

import (
	"context"

	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/utils"
)

type TimeLogsRepo struct{ db *DB }

func (r *TimeLogsRepo) Create(_ context.Context, tl timelog.TimeLog) error {
	r.db.mu.Lock()
	r.db.timeLogs[tl.ID] = tl
	r.db.mu.Unlock()
	return nil
}

func (r *TimeLogsRepo) ListByUser(_ context.Context, userID string, page timelog.Page) ([]timelog.TimeLog, *string, bool, error) {
	return r.list(func(tl timelog.TimeLog) bool { return tl.UserID == userID }, page)
}

func (r *TimeLogsRepo) ListByProject(_ context.Context, projectID string, page timelog.Page) ([]timelog.TimeLog, *string, bool, error) {
	return r.list(func(tl timelog.TimeLog) bool { return tl.ProjectID == projectID }, page)
}

func (r *TimeLogsRepo) list(match func(timelog.TimeLog) bool, page timelog.Page) ([]timelog.TimeLog, *string, bool, error) {
	r.db.mu.RLock()
	out := make([]timelog.TimeLog, 0)
	for _, tl := range r.db.timeLogs {
		if !match(tl) {
			continue
		}
		if p, ok := r.db.projects[tl.ProjectID]; ok {
			tl.ProjectName = p.Name
		}
		if p, ok := r.db.profiles[tl.UserID]; ok {
			tl.EmployeeName = p.FullName
		}
		out = append(out, tl)
	}
	r.db.mu.RUnlock()

	sortBy(out, newer)

	if page.AfterID != "" {
		cursor := timelog.TimeLog{Date: page.AfterDate, CreatedAt: page.AfterCreatedAt, ID: page.AfterID}
		filtered := out[:0]
		for _, tl := range out {
			if newer(cursor, tl) {
				filtered = append(filtered, tl)
			}
		}
		out = filtered
	}

	if page.Limit <= 0 || len(out) <= page.Limit {
		return out, nil, false, nil
	}

	out = out[:page.Limit]
	last := out[len(out)-1]
	cur, err := utils.EncodeTimeLogCursor(last.Date, last.CreatedAt, last.ID)
	if err != nil {
		return nil, nil, false, err
	}
	return out, &cur, true, nil
}

// newer orders by (date, created_at, id) descending.
func newer(a, b timelog.TimeLog) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
