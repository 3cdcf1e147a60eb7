package importer_test

import (
	"bytes"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/internal/importer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func singleLine(text string) importer.Line {
	lines, err := importer.Parse(text)
	Expect(err).NotTo(HaveOccurred())
	Expect(lines).To(HaveLen(1))
	return lines[0]
}

var _ = Describe("Normalizer", func() {
	var n *importer.Normalizer

	BeforeEach(func() {
		n = newNormalizer()
	})

	It("maps every column of a complete row", func() {
		line := singleLine("溝通技巧,神資,600-數位科技事業群,強化跨部門溝通,2024-01-20,2024-01-21,13:30-16:30,3,20,林小美,HR,5000,外訓,王小明|李大偉")
		c, rej := n.Normalize(line, hr)

		Expect(rej).To(BeNil())
		Expect(c).To(Equal(course.Course{
			ID:                "id-1",
			Name:              "溝通技巧",
			Company:           "神資",
			Department:        "600-數位科技事業群",
			Objective:         "強化跨部門溝通",
			StartDate:         "2024-01-20",
			EndDate:           "2024-01-21",
			Time:              "13:30-16:30",
			Duration:          3,
			ExpectedAttendees: 20,
			Instructor:        "林小美",
			InstructorOrg:     "HR",
			Cost:              5000,
			TrainingType:      course.TrainingExternal,
			Trainees:          "王小明,李大偉",
			Status:            course.StatusPlanned,
			CreatedBy:         auth.CreatedByHR,
		}))
	})

	It("zeroes unparseable numbers instead of rejecting", func() {
		c, rej := n.Normalize(singleLine("A,神資,600-數位科技事業群,,2024-01-01,,,abc,many,,,n/a"), hr)
		Expect(rej).To(BeNil())
		Expect(c.Duration).To(BeZero())
		Expect(c.ExpectedAttendees).To(BeZero())
		Expect(c.Cost).To(BeZero())
	})

	It("reads leading numbers the way lenient parsing does", func() {
		c, _ := n.Normalize(singleLine("A,神資,600-數位科技事業群,,,,,7.5h,30人,,,12000元"), hr)
		Expect(c.Duration).To(Equal(7.5))
		Expect(c.ExpectedAttendees).To(Equal(30))
		Expect(c.Cost).To(Equal(int64(12000)))

		c, _ = n.Normalize(singleLine("A,神資,600-數位科技事業群,,,,,-2,-5,,,-1"), hr)
		Expect(c.Duration).To(BeZero())
		Expect(c.ExpectedAttendees).To(BeZero())
		Expect(c.Cost).To(BeZero())
	})

	It("defaults dates from the clock and the start date", func() {
		c, _ := n.Normalize(singleLine("A,神資,600-數位科技事業群"), hr)
		Expect(c.StartDate).To(Equal("2024-03-08"))
		Expect(c.EndDate).To(Equal("2024-03-08"))

		c, _ = n.Normalize(singleLine("A,神資,600-數位科技事業群,,2024-05-01"), hr)
		Expect(c.EndDate).To(Equal("2024-05-01"))
	})

	It("detects external training by label", func() {
		for label, want := range map[string]course.TrainingType{
			"外訓":       course.TrainingExternal,
			"External": course.TrainingExternal,
			"EXTERNAL": course.TrainingExternal,
			"內訓":       course.TrainingInternal,
			"":         course.TrainingInternal,
			"other":    course.TrainingInternal,
		} {
			c, _ := n.Normalize(singleLine("A,神資,600-數位科技事業群,,,,,,,,,,"+label+",x"), hr)
			Expect(c.TrainingType).To(Equal(want), label)
		}
	})

	It("attributes rows by role and names unnamed courses", func() {
		c, rej := n.Normalize(singleLine(",神資,600-數位科技事業群"), manager)
		Expect(rej).To(BeNil())
		Expect(c.Name).To(Equal("未命名課程"))
		Expect(c.CreatedBy).To(Equal(auth.CreatedByUser))
	})

	It("rejects rows with fewer than three fields", func() {
		_, rej := n.Normalize(singleLine("只有名稱,神資"), admin)
		Expect(rej).To(Equal(&importer.Rejection{
			Row: 1, Name: "只有名稱", Reason: "格式錯誤 (欄位不足)",
			Code: importer.CodeInsufficientFields, Raw: "只有名稱,神資",
		}))

		_, rej = n.Normalize(singleLine(",神資"), admin)
		Expect(rej.Name).To(Equal("未知"))
	})

	It("explains which scope refused the row", func() {
		_, rej := n.Normalize(singleLine("A,新達,Z10-統合通訊處"), hr)
		Expect(rej.Reason).To(Equal("無權限存取公司: 新達"))
		Expect(rej.Code).To(Equal(string(internal.ErrCodeCompanyDenied)))

		_, rej = n.Normalize(singleLine("A,神資,PA0-財務處"), manager)
		Expect(rej.Reason).To(Equal("神資 無權限存取部門: PA0-財務處"))
		Expect(rej.Code).To(Equal(string(internal.ErrCodeDepartmentDenied)))
	})

	It("is idempotent on an exported row", func() {
		canonical := course.Course{
			ID:                "original",
			Name:              "React, 基礎與實戰",
			Company:           "神資",
			Department:        "600-數位科技事業群",
			Objective:         "前端 \"實戰\"",
			StartDate:         "2023-11-05",
			EndDate:           "2023-11-06",
			Time:              "09:00-17:00",
			Duration:          7.5,
			ExpectedAttendees: 30,
			Instructor:        "張志明",
			InstructorOrg:     "前端技術學院",
			Cost:              15000,
			Status:            course.StatusPlanned,
			CreatedBy:         auth.CreatedByHR,
			TrainingType:      course.TrainingExternal,
			Trainees:          "陳經理,林副理",
		}

		var buf bytes.Buffer
		Expect(course.WriteRecord(&buf, course.Row(canonical))).To(Succeed())

		c, rej := n.Normalize(singleLine(buf.String()), hr)
		Expect(rej).To(BeNil())
		Expect(c.ID).NotTo(Equal(canonical.ID))
		c.ID = canonical.ID
		Expect(c).To(Equal(canonical))
	})

	It("is idempotent on exported rows with full-width commas and line breaks", func() {
		canonical := course.Course{
			ID:           "original",
			Name:         "溝通，協作",
			Company:      "神資",
			Department:   "600-數位科技事業群",
			Objective:    "line1\nline2",
			StartDate:    "2024-01-01",
			EndDate:      "2024-01-01",
			Status:       course.StatusPlanned,
			CreatedBy:    auth.CreatedByHR,
			TrainingType: course.TrainingInternal,
		}

		var buf bytes.Buffer
		Expect(course.WriteRecord(&buf, course.Row(canonical))).To(Succeed())

		c, rej := n.Normalize(singleLine(buf.String()), admin)
		Expect(rej).To(BeNil())
		c.ID = canonical.ID
		Expect(c).To(Equal(canonical))
	})
})
