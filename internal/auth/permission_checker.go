package auth

import "fmt"

// DenialKind tells which level of the company/department scope refused access.
type DenialKind string

const (
	DeniedCompany    DenialKind = "company"
	DeniedDepartment DenialKind = "department"
)

// ViewDeniedError explains why a principal may not see a company/department pair.
type ViewDeniedError struct {
	Kind       DenialKind
	Company    string
	Department string
}

func (e *ViewDeniedError) Error() string {
	if e.Kind == DeniedCompany {
		return fmt.Sprintf("無權限存取公司: %s", e.Company)
	}
	return fmt.Sprintf("%s 無權限存取部門: %s", e.Company, e.Department)
}

// CanView decides read visibility of a (company, department) scope.
// Missing permission data never grants access.
func CanView(p *Principal, company, department string) bool {
	return CheckView(p, company, department) == nil
}

// CheckView is CanView with the reason for a refusal.
func CheckView(p *Principal, company, department string) error {
	if p == nil {
		return &ViewDeniedError{Kind: DeniedCompany, Company: company, Department: department}
	}
	if p.Role == RoleSystemAdmin {
		return nil
	}

	perm, ok := p.permissionFor(company)
	if !ok {
		return &ViewDeniedError{Kind: DeniedCompany, Company: company, Department: department}
	}
	if perm.ViewAllDepartments {
		return nil
	}
	for _, d := range perm.AllowedDepartments {
		if d == department {
			return nil
		}
	}
	return &ViewDeniedError{Kind: DeniedDepartment, Company: company, Department: department}
}

// CanDelete only forbids general users from removing HR-authored records.
// It does not imply visibility; callers combine it with CanView.
func CanDelete(p *Principal, createdBy string) bool {
	if p == nil {
		return false
	}
	return !(p.Role == RoleGeneralUser && createdBy == CreatedByHR)
}

// CreatedByFor is the attribution stamped on records a principal creates.
func CreatedByFor(p *Principal) string {
	if p != nil && p.Role == RoleGeneralUser {
		return CreatedByUser
	}
	return CreatedByHR
}

// Attribution values of a course record's CreatedBy field.
const (
	CreatedByHR   = "HR"
	CreatedByUser = "User"
)

func (p *Principal) permissionFor(company string) (CompanyPermission, bool) {
	for _, perm := range p.Permissions {
		if perm.Company == company {
			return perm, true
		}
	}
	return CompanyPermission{}, false
}
