package dashboard

import (
	"math"
	"sort"

	"github.com/frahmantamala/training-management/internal/course"
)

// Stats are the headline numbers over a set of courses. Rates are whole
// percentages.
type Stats struct {
	TotalCourses       int     `json:"total_courses"`
	ExpectedTotalCost  int64   `json:"expected_total_cost"`
	ActualTotalCost    int64   `json:"actual_total_cost"`
	ExpectedTotalHours float64 `json:"expected_total_hours"`
	ActualTotalHours   float64 `json:"actual_total_hours"`
	AvgSatisfaction    float64 `json:"avg_satisfaction"`
	CompletionRate     int     `json:"completion_rate"`
	OpeningRate        int     `json:"opening_rate"`
	ParticipationRate  int     `json:"participation_rate"`
}

type MonthlyPoint struct {
	Month   string `json:"month"`
	Courses int    `json:"courses"`
	Cost    int64  `json:"cost"`
}

type StatusCount struct {
	Status course.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

type Summary struct {
	Stats   Stats          `json:"stats"`
	Monthly []MonthlyPoint `json:"monthly"`
	Status  []StatusCount  `json:"status"`
}

var statusOrder = []struct {
	status course.Status
	label  string
}{
	{course.StatusPlanned, "規劃中"},
	{course.StatusCompleted, "已完成"},
	{course.StatusCancelled, "已取消"},
}

// Summarize computes the dashboard for the given courses. Callers pass only
// what the viewer may see.
func Summarize(cs []course.Course) Summary {
	return Summary{
		Stats:   Compute(cs),
		Monthly: Monthly(cs),
		Status:  StatusBreakdown(cs),
	}
}

// Compute derives the headline numbers. Actual cost and hours leave out
// cancelled courses; satisfaction averages completed ones only.
func Compute(cs []course.Course) Stats {
	var (
		s                 Stats
		completed         int
		nonCancelled      int
		satisfactionSum   float64
		expectedAttendees int
		actualAttendees   int
	)
	s.TotalCourses = len(cs)

	for _, c := range cs {
		s.ExpectedTotalCost += c.Cost
		s.ExpectedTotalHours += c.Duration
		actualAttendees += c.ActualAttendees

		if c.IsCompleted() {
			completed++
			satisfactionSum += c.Satisfaction
		}
		if !c.IsCancelled() {
			nonCancelled++
			s.ActualTotalCost += c.Cost
			s.ActualTotalHours += c.Duration
			expectedAttendees += c.ExpectedAttendees
		}
	}

	if completed > 0 {
		s.AvgSatisfaction = math.Round(satisfactionSum/float64(completed)*10) / 10
	}
	s.CompletionRate = percent(completed, s.TotalCourses)
	s.OpeningRate = percent(nonCancelled, s.TotalCourses)
	s.ParticipationRate = percent(actualAttendees, expectedAttendees)
	return s
}

// Monthly counts courses and sums cost per start month, oldest first.
func Monthly(cs []course.Course) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	for _, c := range cs {
		m := c.Month()
		p, ok := byMonth[m]
		if !ok {
			p = &MonthlyPoint{Month: m}
			byMonth[m] = p
		}
		p.Courses++
		p.Cost += c.Cost
	}

	out := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// StatusBreakdown lists statuses that occur at least once.
func StatusBreakdown(cs []course.Course) []StatusCount {
	counts := make(map[course.Status]int, len(statusOrder))
	for _, c := range cs {
		counts[c.Status]++
	}

	out := []StatusCount{}
	for _, s := range statusOrder {
		if n := counts[s.status]; n > 0 {
			out = append(out, StatusCount{Status: s.status, Label: s.label, Count: n})
		}
	}
	return out
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
