package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/project"
)

type ProjectsRepo struct{ db *DB }

func (r *ProjectsRepo) Create(_ context.Context, p project.Project) error {
	r.db.mu.Lock()
	r.db.projects[p.ID] = p
	r.db.mu.Unlock()
	return nil
}

func (r *ProjectsRepo) GetOwned(_ context.Context, managerID, projectID string) (project.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.projects[projectID]
	if !ok || p.ManagerID != managerID {
		return project.Project{}, project.ErrNotFound
	}
	return p, nil
}

func (r *ProjectsRepo) ListByManager(_ context.Context, managerID string) ([]project.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]project.Project, 0)
	for _, p := range r.db.projects {
		if p.ManagerID == managerID {
			out = append(out, p)
		}
	}
	sortProjects(out)
	return out, nil
}

func (r *ProjectsRepo) ListForMember(_ context.Context, userID string) ([]project.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]project.Project, 0)
	for _, m := range r.db.memberships {
		if m.Status != membership.StatusAccepted || m.UserID == nil || *m.UserID != userID {
			continue
		}
		if p, ok := r.db.projects[m.ProjectID]; ok && !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	sortProjects(out)
	return out, nil
}

func sortProjects(ps []project.Project) {
	sortBy(ps, func(a, b project.Project) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func sortBy[T any](s []T, less func(a, b T) bool) {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
}
