package organization

import (
	"fmt"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
)

// Taxonomy answers lookups against the static company/department mapping.
// It is immutable after construction and safe for concurrent use.
type Taxonomy struct {
	companies []Company
	index     map[string]int
}

func NewTaxonomy(companies []Company) *Taxonomy {
	if len(companies) == 0 {
		companies = DefaultCompanies()
	}
	t := &Taxonomy{
		companies: make([]Company, 0, len(companies)),
		index:     make(map[string]int, len(companies)),
	}
	for _, c := range companies {
		t.index[c.Name] = len(t.companies)
		t.companies = append(t.companies, c.clone())
	}
	return t
}

func (t *Taxonomy) Companies() []Company {
	out := make([]Company, 0, len(t.companies))
	for _, c := range t.companies {
		out = append(out, c.clone())
	}
	return out
}

func (t *Taxonomy) Departments(company string) []string {
	i, ok := t.index[company]
	if !ok {
		return nil
	}
	return append([]string(nil), t.companies[i].Departments...)
}

func (t *Taxonomy) IsValidCompany(company string) bool {
	_, ok := t.index[company]
	return ok
}

func (t *Taxonomy) IsValidDepartment(company, department string) bool {
	i, ok := t.index[company]
	return ok && t.companies[i].hasDepartment(department)
}

// Validate checks a (company, department) pair exists in the mapping.
func (t *Taxonomy) Validate(company, department string) error {
	if !t.IsValidCompany(company) {
		return internal.NewValidationFieldError("company", fmt.Sprintf("unknown company %s", company), internal.ErrCodeUnknownCompany)
	}
	if !t.IsValidDepartment(company, department) {
		return internal.NewValidationFieldError("department", fmt.Sprintf("%s has no department %s", company, department), internal.ErrCodeUnknownDepartment)
	}
	return nil
}

// ValidatePermissions rejects grants that reference companies or departments
// outside the mapping.
func (t *Taxonomy) ValidatePermissions(perms []auth.CompanyPermission) error {
	seen := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		if !t.IsValidCompany(p.Company) {
			return internal.NewValidationFieldError("permissions", fmt.Sprintf("unknown company %s", p.Company), internal.ErrCodeUnknownCompany)
		}
		if _, dup := seen[p.Company]; dup {
			return internal.NewValidationFieldError("permissions", fmt.Sprintf("company %s listed twice", p.Company), internal.ErrCodeValidationFailed)
		}
		seen[p.Company] = struct{}{}
		if p.ViewAllDepartments {
			continue
		}
		for _, d := range p.AllowedDepartments {
			if !t.IsValidDepartment(p.Company, d) {
				return internal.NewValidationFieldError("permissions", fmt.Sprintf("%s has no department %s", p.Company, d), internal.ErrCodeUnknownDepartment)
			}
		}
	}
	return nil
}

// VisibleTo narrows the mapping to what p may see.
func (t *Taxonomy) VisibleTo(p *auth.Principal) []Company {
	if p.IsSystemAdmin() {
		return t.Companies()
	}
	var out []Company
	for _, c := range t.companies {
		var depts []string
		for _, d := range c.Departments {
			if auth.CanView(p, c.Name, d) {
				depts = append(depts, d)
			}
		}
		if len(depts) > 0 {
			out = append(out, Company{Name: c.Name, Departments: depts})
		}
	}
	return out
}
