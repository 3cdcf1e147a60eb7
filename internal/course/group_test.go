package course_test

import (
	"github.com/frahmantamala/training-management/internal/course"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GroupByMonth", func() {
	It("orders months ascending and courses by start date", func() {
		at := func(id, start string) course.Course {
			c := record(id, "神資", "600-數位科技事業群", "HR")
			c.StartDate = start
			return c
		}
		groups := course.GroupByMonth([]course.Course{
			at("dec", "2023-12-01"),
			at("late", "2023-11-15"),
			at("early", "2023-11-05"),
		})

		Expect(groups).To(HaveLen(2))
		Expect(groups[0].Month).To(Equal("2023-11"))
		Expect(groups[0].Courses[0].ID).To(Equal("early"))
		Expect(groups[0].Courses[1].ID).To(Equal("late"))
		Expect(groups[1].Month).To(Equal("2023-12"))
	})

	It("returns an empty list for no courses", func() {
		Expect(course.GroupByMonth(nil)).To(BeEmpty())
	})
})
