package course

import (
	"errors"
	"slices"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
)

// FilterVisible keeps the records p may read. The input is never modified.
func FilterVisible(records []Course, p *auth.Principal) []Course {
	if p.IsSystemAdmin() {
		return slices.Clone(records)
	}
	out := make([]Course, 0, len(records))
	for _, r := range records {
		if auth.CanView(p, r.Company, r.Department) {
			out = append(out, r)
		}
	}
	return out
}

func CanView(p *auth.Principal, c Course) bool {
	return auth.CanView(p, c.Company, c.Department)
}

func CanDelete(p *auth.Principal, c Course) bool {
	return auth.CanDelete(p, c.CreatedBy)
}

// DeletableVisible is the scope selection and batch delete work in.
func DeletableVisible(records []Course, p *auth.Principal) []Course {
	visible := FilterVisible(records, p)
	out := visible[:0]
	for _, r := range visible {
		if CanDelete(p, r) {
			out = append(out, r)
		}
	}
	return out
}

// CheckDelete explains why p may not delete c, or returns nil.
func CheckDelete(p *auth.Principal, c Course) error {
	if err := auth.CheckView(p, c.Company, c.Department); err != nil {
		return PermissionError(err)
	}
	if !CanDelete(p, c) {
		return internal.NewForbiddenError("general users cannot delete courses created by HR", internal.ErrCodeCannotDeleteCourse)
	}
	return nil
}

// PermissionError turns a view denial into a 403 AppError carrying the
// denial message.
func PermissionError(err error) error {
	var denied *auth.ViewDeniedError
	if !errors.As(err, &denied) {
		return err
	}
	code := internal.ErrCodeDepartmentDenied
	if denied.Kind == auth.DeniedCompany {
		code = internal.ErrCodeCompanyDenied
	}
	return internal.NewForbiddenError(denied.Error(), code).WithCause(err)
}
