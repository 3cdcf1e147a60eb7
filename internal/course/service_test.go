package course_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/internal/organization"
	"github.com/frahmantamala/training-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validForm() course.CourseForm {
	return course.CourseForm{
		Name:              "React 基礎與實戰",
		Company:           "神資",
		Department:        "600-數位科技事業群",
		StartDate:         "2023-11-05",
		EndDate:           "2023-11-05",
		Time:              "09:00-17:00",
		Duration:          7,
		ExpectedAttendees: 30,
		Cost:              15000,
	}
}

func detailCode(err error) string {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue(), "expected an AppError, got %v", err)
	details, ok := appErr.Details.(internal.ValidationErrors)
	Expect(ok).To(BeTrue())
	return details.Errors[0].Code
}

var _ = Describe("Service", func() {
	var (
		svc  *course.Service
		coll *fakeCollection
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		svc = course.NewService(organization.NewTaxonomy(nil), logger.Discard())
		coll = &fakeCollection{}
	})

	Describe("Create", func() {
		It("mints an id and applies defaults", func() {
			coll.principal = manager
			res, err := svc.Create(ctx, coll, manager, validForm())

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Course.ID).NotTo(BeEmpty())
			Expect(res.Course.CreatedBy).To(Equal(auth.CreatedByUser))
			Expect(res.Course.Status).To(Equal(course.StatusPlanned))
			Expect(res.Course.TrainingType).To(Equal(course.TrainingInternal))
			Expect(res.Warnings).To(BeEmpty())
			Expect(coll.records).To(HaveLen(1))
		})

		It("attributes HR authored records", func() {
			res, err := svc.Create(ctx, coll, hr, validForm())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Course.CreatedBy).To(Equal(auth.CreatedByHR))
		})

		It("refuses scopes outside the principal's permissions", func() {
			form := validForm()
			form.Department = "PA0-財務處"
			_, err := svc.Create(ctx, coll, manager, form)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDepartmentDenied))

			form.Company, form.Department = "新達", "Z10-統合通訊處"
			_, err = svc.Create(ctx, coll, hr, form)
			appErr, _ = internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeCompanyDenied))
			Expect(appErr.Message).To(ContainSubstring("新達"))
			Expect(coll.records).To(BeEmpty())
		})

		It("rejects departments that do not belong to the company", func() {
			form := validForm()
			form.Department = "Z10-統合通訊處"
			_, err := svc.Create(ctx, coll, admin, form)
			Expect(detailCode(err)).To(Equal(string(internal.ErrCodeUnknownDepartment)))
		})

		It("requires a reason for cancelled courses", func() {
			form := validForm()
			form.Status = course.StatusCancelled
			_, err := svc.Create(ctx, coll, admin, form)
			Expect(detailCode(err)).To(Equal(string(internal.ErrCodeReasonRequired)))

			form.CancellationReason = "講師請假"
			res, err := svc.Create(ctx, coll, admin, form)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Course.CancellationReason).To(Equal("講師請假"))
		})

		It("drops the reason when the course is not cancelled", func() {
			form := validForm()
			form.Status = course.StatusCompleted
			form.CancellationReason = "leftover"
			res, err := svc.Create(ctx, coll, admin, form)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Course.CancellationReason).To(BeEmpty())
		})

		It("rejects malformed dates and out of range satisfaction", func() {
			form := validForm()
			form.StartDate = "2023/11/05"
			_, err := svc.Create(ctx, coll, admin, form)
			Expect(detailCode(err)).To(Equal(string(internal.ErrCodeInvalidDate)))

			form = validForm()
			form.Satisfaction = 5.5
			_, err = svc.Create(ctx, coll, admin, form)
			Expect(err).To(HaveOccurred())
		})

		It("saves but warns when the end date precedes the start date", func() {
			form := validForm()
			form.EndDate = "2023-11-01"
			res, err := svc.Create(ctx, coll, admin, form)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Warnings).To(HaveLen(1))
			Expect(coll.records).To(HaveLen(1))
		})

		It("passes sync failures through with the built course", func() {
			coll.saveErr = internal.NewSyncError("saved locally, remote copy may be stale", errors.New("timeout"))
			res, err := svc.Create(ctx, coll, admin, validForm())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSyncFailed))
			Expect(res.Course.ID).NotTo(BeEmpty())
		})
	})

	Describe("Update", func() {
		var stored course.Course

		BeforeEach(func() {
			stored = record("c1", "神資", "600-數位科技事業群", auth.CreatedByHR)
			coll.records = []course.Course{stored}
		})

		It("keeps id and attribution", func() {
			coll.principal = manager
			form := validForm()
			form.Name = "renamed"
			res, err := svc.Update(ctx, coll, manager, "c1", form)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Course.ID).To(Equal("c1"))
			Expect(res.Course.CreatedBy).To(Equal(auth.CreatedByHR))
			Expect(coll.records[0].Name).To(Equal("renamed"))
		})

		It("refuses moving a record out of the principal's scope", func() {
			coll.principal = manager
			form := validForm()
			form.Department = "PA0-財務處"
			_, err := svc.Update(ctx, coll, manager, "c1", form)
			Expect(err).To(HaveOccurred())
			Expect(coll.records[0]).To(Equal(stored))
		})

		It("hides records the principal cannot see", func() {
			coll.principal = &auth.Principal{Role: auth.RoleHR}
			_, err := svc.Update(ctx, coll, coll.principal, "c1", validForm())
			Expect(err).To(Equal(course.ErrCourseNotFound))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			coll.records = []course.Course{
				record("hr", "神資", "600-數位科技事業群", auth.CreatedByHR),
				record("mine", "神資", "600-數位科技事業群", auth.CreatedByUser),
			}
			coll.principal = manager
		})

		It("lets a general user delete their own record", func() {
			Expect(svc.Delete(ctx, coll, manager, "mine")).To(Succeed())
			Expect(coll.records).To(HaveLen(1))
		})

		It("refuses HR records to a general user", func() {
			err := svc.Delete(ctx, coll, manager, "hr")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeCannotDeleteCourse))
			Expect(coll.records).To(HaveLen(2))
		})

		It("reports unknown ids as not found", func() {
			Expect(svc.Delete(ctx, coll, manager, "nope")).To(Equal(course.ErrCourseNotFound))
		})
	})

	It("lists visible courses grouped by month", func() {
		coll.records = []course.Course{
			record("1", "神資", "600-數位科技事業群", auth.CreatedByHR),
			record("2", "新達", "Z10-統合通訊處", auth.CreatedByHR),
		}
		coll.principal = hr
		res := svc.List(coll)
		Expect(res.Total).To(Equal(1))
		Expect(res.Groups).To(HaveLen(1))
		Expect(res.Groups[0].Month).To(Equal("2023-11"))
	})
})
