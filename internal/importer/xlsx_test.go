package importer_test

import (
	"bytes"
	"strings"

	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/internal/importer"
	"github.com/frahmantamala/training-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Workbook uploads", func() {
	It("recognises workbooks by extension or content type", func() {
		Expect(importer.IsWorkbook("courses.XLSX", "")).To(BeTrue())
		Expect(importer.IsWorkbook("upload", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")).To(BeTrue())
		Expect(importer.IsWorkbook("courses.csv", "text/csv")).To(BeFalse())
	})

	It("re-imports an exported workbook", func() {
		exported := []course.Course{
			{ID: "a", Name: "Excel進階實戰", Company: "神資", Department: "600-數位科技事業群",
				StartDate: "2024-01-15", EndDate: "2024-01-15", Duration: 7, ExpectedAttendees: 30, Cost: 12000,
				TrainingType: course.TrainingInternal},
			{ID: "b", Name: "溝通技巧, 進階", Company: "新達", Department: "Z10-統合通訊處",
				StartDate: "2024-01-20", EndDate: "2024-01-20", Duration: 3.5, Cost: 5000,
				TrainingType: course.TrainingExternal, Trainees: "王小明,李大偉"},
		}
		var buf bytes.Buffer
		Expect(course.WriteXLSX(&buf, exported)).To(Succeed())

		text, err := importer.WorkbookText(&buf)
		Expect(err).NotTo(HaveOccurred())

		preview, err := importer.NewPipeline(newNormalizer(), logger.Discard()).Run(text, admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(preview.Rejected).To(BeEmpty())
		Expect(preview.Accepted).To(HaveLen(2))

		first, second := preview.Accepted[0], preview.Accepted[1]
		Expect(first.Row).To(Equal(2))
		Expect(first.Course.Duration).To(Equal(7.0))
		Expect(first.Course.Cost).To(Equal(int64(12000)))
		Expect(second.Course.Name).To(Equal("溝通技巧, 進階"))
		Expect(second.Course.Duration).To(Equal(3.5))
		Expect(second.Course.TrainingType).To(Equal(course.TrainingExternal))
		Expect(second.Course.Trainees).To(Equal("王小明,李大偉"))
	})

	It("refuses files that are not workbooks", func() {
		_, err := importer.WorkbookText(strings.NewReader("not a zip"))
		Expect(err).To(HaveOccurred())
	})
})
