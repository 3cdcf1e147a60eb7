package workspace

import (
	"slices"

	"github.com/frahmantamala/training-management/internal/course"
)

// View is the screen a workspace is showing. Changing it drops the selection.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewList      View = "list"
	ViewImport    View = "import"
	ViewUsers     View = "users"
)

func (v View) Valid() bool {
	switch v {
	case ViewDashboard, ViewList, ViewImport, ViewUsers:
		return true
	}
	return false
}

// Selection is a set of course ids. Every mutation takes the current
// deletable-visible scope so the set never holds an id outside it.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

func inScope(scope []course.Course, id string) bool {
	return slices.ContainsFunc(scope, func(c course.Course) bool { return c.ID == id })
}

// Toggle flips id and reports whether anything changed. Ids outside scope
// are ignored.
func (s *Selection) Toggle(id string, scope []course.Course) bool {
	if !inScope(scope, id) {
		return false
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	return true
}

func (s *Selection) SelectAll(scope []course.Course) {
	clear(s.ids)
	for _, c := range scope {
		s.ids[c.ID] = struct{}{}
	}
}

func (s *Selection) Clear() {
	clear(s.ids)
}

// Prune drops ids that left scope, e.g. after a snapshot replacement.
func (s *Selection) Prune(scope []course.Course) {
	for id := range s.ids {
		if !inScope(scope, id) {
			delete(s.ids, id)
		}
	}
}

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

type SelectionState struct {
	View          View     `json:"view"`
	Selected      []string `json:"selected"`
	Deletable     int      `json:"deletable"`
	Indeterminate bool     `json:"indeterminate"`
	AllSelected   bool     `json:"all_selected"`
}

func newSelectionState(view View, selected []string, deletable int) SelectionState {
	n := len(selected)
	return SelectionState{
		View:          view,
		Selected:      selected,
		Deletable:     deletable,
		Indeterminate: n > 0 && n < deletable,
		AllSelected:   deletable > 0 && n == deletable,
	}
}
