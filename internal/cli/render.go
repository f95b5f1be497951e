package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/geocoder89/timehub/internal/client"
	"github.com/geocoder89/timehub/internal/dashboard"
	"github.com/geocoder89/timehub/internal/domain/membership"
	"github.com/geocoder89/timehub/internal/domain/profile"
	"github.com/geocoder89/timehub/internal/domain/project"
	"github.com/geocoder89/timehub/internal/domain/timelog"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func success(out io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(out, format+"\n", args...)
}

func notice(out io.Writer, format string, args ...any) {
	color.New(color.FgYellow).Fprintf(out, format+"\n", args...)
}

func hint(out io.Writer, format string, args ...any) {
	color.New(color.Faint).Fprintf(out, format+"\n", args...)
}

// PrintError writes a command failure the way ttctl reports it.
func PrintError(out io.Writer, err error) {
	color.New(color.FgRed).Fprintf(out, "Error: %v\n", err)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderSnapshot(out io.Writer, s client.Snapshot) {
	switch {
	case s.Loading:
		fmt.Fprintln(out, "Loading...")
	case s.Err != nil:
		PrintError(out, s.Err)
	case s.Identity == nil:
		fmt.Fprintln(out, "Not signed in")
	default:
		fmt.Fprintln(out, titleStyle.Render(s.Identity.Email))
		if s.Profile != nil {
			fmt.Fprintf(out, "Name: %s\nRole: %s\n", s.Profile.FullName, s.Profile.Role)
		}
	}
}

func renderProjects(out io.Writer, items []project.Project) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No projects yet.")
		return
	}
	t := newTable("ID", "NAME", "CREATED")
	for _, p := range items {
		t.Row(p.ID, p.Name, p.CreatedAt.Format(timelog.DateLayout))
	}
	fmt.Fprintln(out, t)
}

func renderEmployees(out io.Writer, items []profile.Profile) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No employees yet.")
		return
	}
	t := newTable("NAME", "EMAIL")
	for _, p := range items {
		t.Row(p.FullName, p.Email)
	}
	fmt.Fprintln(out, t)
}

func renderInvitations(out io.Writer, items []membership.Membership) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No invitations yet.")
		return
	}
	t := newTable("EMAIL", "STATUS", "UPDATED")
	for _, m := range items {
		t.Row(m.InviteEmail, string(m.Status), m.UpdatedAt.Format(timelog.DateLayout))
	}
	fmt.Fprintln(out, t)
}

func renderTimeLogs(out io.Writer, items []timelog.TimeLog) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No time logged yet.")
		return
	}
	t := newTable("DATE", "PROJECT", "WHO", "HOURS", "NOTES")
	for _, tl := range items {
		t.Row(tl.Date, firstNonEmpty(tl.ProjectName, tl.ProjectID), tl.EmployeeName, tl.Hours.StringFixed(2), tl.Notes)
	}
	fmt.Fprintln(out, t)
}

func renderManagerView(out io.Writer, v dashboard.ManagerView) {
	fmt.Fprintln(out, titleStyle.Render("Manager dashboard: "+v.Profile.FullName))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Projects")
	renderProjects(out, v.Projects)
	fmt.Fprintln(out, "Employees")
	renderEmployees(out, v.Employees)
}

func renderEmployeeView(out io.Writer, v dashboard.EmployeeView) {
	fmt.Fprintln(out, titleStyle.Render("Employee dashboard: "+v.Profile.FullName))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Projects")
	renderProjects(out, v.Projects)
	fmt.Fprintln(out, "Recent time")
	renderTimeLogs(out, v.TimeLogs)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
