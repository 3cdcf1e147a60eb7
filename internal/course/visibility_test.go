package course_test

import (
	"slices"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Visibility", func() {
	records := []course.Course{
		record("1", "神資", "600-數位科技事業群", auth.CreatedByHR),
		record("2", "神資", "PA0-財務處", auth.CreatedByUser),
		record("3", "新達", "Z10-統合通訊處", auth.CreatedByHR),
		record("4", "神資", "600-數位科技事業群", auth.CreatedByUser),
	}

	ids := func(cs []course.Course) []string {
		out := []string{}
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	It("returns every record to a system admin", func() {
		Expect(course.FilterVisible(records, admin)).To(Equal(records))
	})

	It("keeps exactly the records the principal can view", func() {
		for _, p := range []*auth.Principal{hr, manager} {
			visible := course.FilterVisible(records, p)
			for _, r := range records {
				Expect(slices.Contains(visible, r)).To(Equal(auth.CanView(p, r.Company, r.Department)),
					"principal %s record %s", p.ID, r.ID)
			}
		}
		Expect(ids(course.FilterVisible(records, hr))).To(Equal([]string{"1", "2", "4"}))
		Expect(ids(course.FilterVisible(records, manager))).To(Equal([]string{"1", "4"}))
	})

	It("shows nothing to a principal without permissions", func() {
		Expect(course.FilterVisible(records, &auth.Principal{Role: auth.RoleHR})).To(BeEmpty())
		Expect(course.FilterVisible(records, nil)).To(BeEmpty())
	})

	It("does not modify its input", func() {
		before := append([]course.Course(nil), records...)
		_ = course.DeletableVisible(records, manager)
		Expect(records).To(Equal(before))
	})

	It("narrows deletable records for general users", func() {
		Expect(ids(course.DeletableVisible(records, manager))).To(Equal([]string{"4"}))
		Expect(ids(course.DeletableVisible(records, hr))).To(Equal([]string{"1", "2", "4"}))
	})

	Describe("CheckDelete", func() {
		It("refuses HR records to general users", func() {
			err := course.CheckDelete(manager, records[0])
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCannotDeleteCourse))
		})

		It("reports the department denial first", func() {
			err := course.CheckDelete(manager, records[1])
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDepartmentDenied))
			Expect(appErr.Message).To(ContainSubstring("PA0-財務處"))
		})

		It("allows a general user to delete their own records", func() {
			Expect(course.CheckDelete(manager, records[3])).To(Succeed())
		})
	})
})
