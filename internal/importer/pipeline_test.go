package importer_test

import (
	"bytes"

	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/internal/importer"
	"github.com/frahmantamala/training-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pipeline", func() {
	var pipeline *importer.Pipeline

	BeforeEach(func() {
		pipeline = importer.NewPipeline(newNormalizer(), logger.Discard())
	})

	It("keeps going past rejected rows", func() {
		input := "課程名稱,公司,部門\n" +
			"新人訓練,神資,600-數位科技事業群\n" +
			"財務講座,新達,Z10-統合通訊處\n"

		preview, err := pipeline.Run(input, hr)
		Expect(err).NotTo(HaveOccurred())

		Expect(preview.Accepted).To(HaveLen(1))
		Expect(preview.Accepted[0].Row).To(Equal(2))
		Expect(preview.Accepted[0].Course.Name).To(Equal("新人訓練"))

		Expect(preview.Rejected).To(HaveLen(1))
		rej := preview.Rejected[0]
		Expect(rej.Row).To(Equal(3))
		Expect(rej.Name).To(Equal("財務講座"))
		Expect(rej.Reason).To(ContainSubstring("新達"))
		Expect(rej.Raw).To(Equal("財務講座,新達,Z10-統合通訊處"))
	})

	It("accepts every row for a system admin", func() {
		preview, err := pipeline.Run(importer.Template(), admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(preview.Accepted).To(HaveLen(2))
		Expect(preview.Rejected).To(BeEmpty())
		Expect(preview.Courses()[1].Trainees).To(Equal("王小明,李大偉"))
	})

	It("flags rows whose end date precedes the start date", func() {
		preview, err := pipeline.Run("A,神資,600-數位科技事業群,,2024-05-10,2024-05-01", hr)
		Expect(err).NotTo(HaveOccurred())
		Expect(preview.Accepted).To(HaveLen(1))
		Expect(preview.Accepted[0].DateOrderWarning).To(BeTrue())
	})

	It("reads back an exported file unchanged", func() {
		exported := []course.Course{
			{ID: "a", Name: "溝通，協作", Company: "神資", Department: "600-數位科技事業群",
				StartDate: "2024-01-01", EndDate: "2024-01-01", TrainingType: course.TrainingInternal},
			{ID: "b", Name: "A", Company: "神資", Department: "PA0-財務處", Objective: "line1\nline2",
				StartDate: "2024-01-02", EndDate: "2024-01-02", TrainingType: course.TrainingInternal},
		}
		var buf bytes.Buffer
		Expect(course.WriteCSV(&buf, exported)).To(Succeed())

		preview, err := pipeline.Run(buf.String(), admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(preview.Rejected).To(BeEmpty())
		Expect(preview.Accepted).To(HaveLen(2))

		first, second := preview.Accepted[0], preview.Accepted[1]
		Expect(first.Row).To(Equal(2))
		Expect(first.Course.Name).To(Equal("溝通，協作"))
		Expect(first.Course.Company).To(Equal("神資"))
		Expect(first.Course.Department).To(Equal("600-數位科技事業群"))
		Expect(second.Row).To(Equal(3))
		Expect(second.Course.Objective).To(Equal("line1\nline2"))
		Expect(second.Course.Department).To(Equal("PA0-財務處"))
		Expect(second.Course.StartDate).To(Equal("2024-01-02"))
	})

	It("reads a line with a stray opening quote as plain fields", func() {
		preview, err := pipeline.Run("\"Excel,神資,600-數位科技事業群", admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(preview.Rejected).To(BeEmpty())
		Expect(preview.Accepted).To(HaveLen(1))
		Expect(preview.Accepted[0].Course.Company).To(Equal("神資"))
		Expect(preview.Accepted[0].Course.Department).To(Equal("600-數位科技事業群"))
	})

	It("refuses input with nothing but a header", func() {
		_, err := pipeline.Run("課程名稱,公司,部門\n\n", hr)
		Expect(err).To(MatchError(importer.ErrNothingParsed))
	})

	It("refuses blank input", func() {
		_, err := pipeline.Run("  \n ", hr)
		Expect(err).To(MatchError(importer.ErrEmptyInput))
	})
})
