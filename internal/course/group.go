package course

import (
	"cmp"
	"slices"
)

type MonthGroup struct {
	Month   string   `json:"month"`
	Courses []Course `json:"courses"`
}

// GroupByMonth buckets courses by start month, months ascending and each
// bucket ordered by start date.
func GroupByMonth(courses []Course) []MonthGroup {
	sorted := slices.Clone(courses)
	SortByStartDate(sorted)

	groups := []MonthGroup{}
	for _, c := range sorted {
		month := c.Month()
		if n := len(groups); n > 0 && groups[n-1].Month == month {
			groups[n-1].Courses = append(groups[n-1].Courses, c)
			continue
		}
		groups = append(groups, MonthGroup{Month: month, Courses: []Course{c}})
	}
	return groups
}

func SortByStartDate(courses []Course) {
	slices.SortStableFunc(courses, func(a, b Course) int {
		return cmp.Compare(a.StartDate, b.StartDate)
	})
}
