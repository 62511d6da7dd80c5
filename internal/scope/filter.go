// Package scope narrows record collections to what a viewer may see and
// what the current page selection asks for. All filters are pure and keep
// the relative order of their input.
package scope

import (
	"slices"

	"github.com/shrimpsizemoose/narvaro/internal/models"
)

// Sentinels meaning "no restriction" on the matching Selection axis.
const (
	YearAll = 0
	WeekAll = 0
)

// Viewer carries the acting user's visibility scope. Admins see everything.
// For trainers an empty AssignedGroups or AssignedYears means no restriction
// on that axis.
type Viewer struct {
	Role           models.Role
	AssignedGroups []string
	AssignedYears  []int
}

func ViewerFor(u *models.User) Viewer {
	return Viewer{
		Role:           u.Role,
		AssignedGroups: u.AssignedGroups,
		AssignedYears:  u.AssignedYears,
	}
}

// Selection is the page-level filter: year/group/unit/week pickers.
// Zero values select everything on that axis.
type Selection struct {
	Year  int
	Group string
	Unit  string
	Week  int
}

func (v Viewer) AllowsGroup(groupID string) bool {
	if v.Role == models.RoleAdmin || len(v.AssignedGroups) == 0 {
		return true
	}
	return slices.Contains(v.AssignedGroups, groupID)
}

func (v Viewer) AllowsYear(year int) bool {
	if v.Role == models.RoleAdmin || len(v.AssignedYears) == 0 {
		return true
	}
	return slices.Contains(v.AssignedYears, year)
}

// Students filters by viewer scope, selected year and group. The unit axis
// compares against the group's current unit, not the student's own unit
// field: unit assignment is tracked per group per term.
func Students(students []models.Student, groups []models.Group, v Viewer, sel Selection) []models.Student {
	unitByGroup := make(map[string]string, len(groups))
	for _, g := range groups {
		unitByGroup[g.ID] = g.CurrentUnit
	}

	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if !v.AllowsGroup(s.GroupID) || !v.AllowsYear(s.Year) {
			continue
		}
		if sel.Year != YearAll && s.Year != sel.Year {
			continue
		}
		if sel.Group != "" && s.GroupID != sel.Group {
			continue
		}
		if sel.Unit != "" && unitByGroup[s.GroupID] != sel.Unit {
			continue
		}
		out = append(out, s)
	}
	return out
}

func Groups(groups []models.Group, v Viewer, sel Selection) []models.Group {
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if !v.AllowsGroup(g.ID) || !v.AllowsYear(g.Year) {
			continue
		}
		if sel.Year != YearAll && g.Year != sel.Year {
			continue
		}
		if sel.Group != "" && g.ID != sel.Group {
			continue
		}
		out = append(out, g)
	}
	return out
}

func Attendance(records []models.AttendanceRecord, v Viewer, sel Selection) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if !v.AllowsGroup(r.GroupID) || !v.AllowsYear(r.Year) {
			continue
		}
		if sel.Year != YearAll && r.Year != sel.Year {
			continue
		}
		if sel.Group != "" && r.GroupID != sel.Group {
			continue
		}
		out = append(out, r)
	}
	return out
}

func Assessments(records []models.AssessmentRecord, v Viewer, sel Selection) []models.AssessmentRecord {
	out := make([]models.AssessmentRecord, 0, len(records))
	for _, r := range records {
		if !v.AllowsGroup(r.GroupID) || !v.AllowsYear(r.Year) {
			continue
		}
		if sel.Year != YearAll && r.Year != sel.Year {
			continue
		}
		if sel.Group != "" && r.GroupID != sel.Group {
			continue
		}
		if sel.Unit != "" && r.Unit != sel.Unit {
			continue
		}
		if sel.Week != WeekAll && r.Week != sel.Week {
			continue
		}
		out = append(out, r)
	}
	return out
}
