package course_test

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("Export", func() {
	var courses []course.Course

	BeforeEach(func() {
		internalCourse := record("a", "神資", "600-數位科技事業群", auth.CreatedByHR)
		internalCourse.Name = "React, 基礎與實戰"
		internalCourse.Duration = 7
		internalCourse.Cost = 15000

		external := record("b", "神資", "600-數位科技事業群", auth.CreatedByHR)
		external.StartDate, external.EndDate = "2023-12-15", "2023-12-16"
		external.TrainingType = course.TrainingExternal
		external.Trainees = "陳經理, 林副理, 王襄理"
		external.Duration = 1.5

		courses = []course.Course{external, internalCourse}
	})

	It("renders rows in the import column order", func() {
		row := course.Row(courses[0])
		Expect(row).To(HaveLen(course.ColumnCount))
		Expect(row[course.ColTrainingType]).To(Equal("外訓"))
		Expect(row[course.ColTrainees]).To(Equal("陳經理|林副理|王襄理"))
		Expect(row[course.ColDuration]).To(Equal("1.5"))
	})

	It("writes quoted CSV with a header line", func() {
		var buf bytes.Buffer
		Expect(course.WriteCSV(&buf, courses)).To(Succeed())
		Expect(strings.HasPrefix(buf.String(), "\ufeff")).To(BeTrue())

		rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[0][0]).To(Equal(course.HeaderLabel))
		Expect(rows[2][course.ColName]).To(Equal("React, 基礎與實戰"))
		Expect(buf.String()).To(ContainSubstring(`"React, 基礎與實戰"`))
	})

	It("quotes fields holding either comma, quotes or line breaks", func() {
		var buf bytes.Buffer
		Expect(course.WriteRecord(&buf, []string{"溝通，協作", "plain", "a\nb", `say "hi"`, " lead", ""})).To(Succeed())
		Expect(buf.String()).To(Equal("\"溝通，協作\",plain,\"a\nb\",\"say \"\"hi\"\"\",\" lead\",\n"))

		rows, err := csv.NewReader(&buf).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(Equal([][]string{{"溝通，協作", "plain", "a\nb", `say "hi"`, " lead", ""}}))
	})

	It("writes a workbook with the same columns", func() {
		var buf bytes.Buffer
		Expect(course.WriteXLSX(&buf, courses)).To(Succeed())

		f, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		rows, err := f.GetRows("Courses")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[0][course.ColTrainees]).To(Equal("受訓名單"))
		Expect(rows[1][course.ColCompany]).To(Equal("神資"))
		Expect(rows[2][course.ColCost]).To(Equal("15000"))
	})

	Describe("ExportFilter", func() {
		It("filters by start date range and type, sorted by start date", func() {
			out := course.ExportFilter{From: "2023-11-01", To: "2023-11-30"}.Apply(courses)
			Expect(out).To(HaveLen(1))
			Expect(out[0].ID).To(Equal("a"))

			out = course.ExportFilter{Type: course.TrainingExternal}.Apply(courses)
			Expect(out).To(HaveLen(1))
			Expect(out[0].ID).To(Equal("b"))

			out = course.ExportFilter{}.Apply(courses)
			Expect(out[0].ID).To(Equal("a"))
		})

		It("rejects malformed bounds", func() {
			Expect(course.ExportFilter{From: "last week"}.Validate()).NotTo(Succeed())
			Expect(course.ExportFilter{Type: "Online"}.Validate()).NotTo(Succeed())
		})
	})

	It("accepts only known formats", func() {
		f, err := course.ParseFormat("")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(course.FormatCSV))

		f, err = course.ParseFormat("XLSX")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(course.FormatXLSX))

		_, err = course.ParseFormat("pdf")
		Expect(err).To(HaveOccurred())
	})
})
