package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	coursePostgres "github.com/frahmantamala/training-management/internal/course/postgres"
	"github.com/frahmantamala/training-management/internal/user"
	userPostgres "github.com/frahmantamala/training-management/internal/user/postgres"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the initial accounts and sample courses for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		return seed(cmd.Context(), db.Gorm, clearData, cfg.Security.BCryptCost, os.Stdout)
	},
}

const seedPassword = "123"

func seedUsers() []user.User {
	return []user.User{
		{
			ID:       user.DefaultAdminID,
			Username: "admin",
			Name:     "系統管理員",
			Role:     auth.RoleSystemAdmin,
		},
		{
			ID:       "hr_user",
			Username: "hr",
			Name:     "人資主管",
			Role:     auth.RoleHR,
			Permissions: []auth.CompanyPermission{
				{Company: "神資", ViewAllDepartments: true},
				{Company: "新達", ViewAllDepartments: true},
			},
			MustChangePassword: true,
		},
		{
			ID:       "dept_manager",
			Username: "user",
			Name:     "部門主管",
			Role:     auth.RoleGeneralUser,
			Permissions: []auth.CompanyPermission{
				{Company: "神資", AllowedDepartments: []string{"600-數位科技事業群"}},
			},
			MustChangePassword: true,
		},
	}
}

func seedCourses() []course.Course {
	return []course.Course{
		{
			ID: "1", Name: "React 基礎與實戰", Company: "神資", Department: "600-數位科技事業群",
			Objective: "提升前端開發能力", StartDate: "2023-11-05", EndDate: "2023-11-05", Time: "09:00-17:00",
			Duration: 7, ExpectedAttendees: 30, ActualAttendees: 28, Instructor: "張志明", InstructorOrg: "前端技術學院",
			Cost: 15000, Satisfaction: 4.6, Status: course.StatusCompleted, CreatedBy: auth.CreatedByHR,
			TrainingType: course.TrainingInternal,
		},
		{
			ID: "2", Name: "溝通與領導力工作坊", Company: "新達", Department: "Z10-統合通訊處",
			Objective: "強化中階主管管理職能", StartDate: "2023-11-15", EndDate: "2023-11-16", Time: "13:00-17:00",
			Duration: 8, ExpectedAttendees: 15, Instructor: "李春嬌", InstructorOrg: "企管顧問公司",
			Cost: 25000, Status: course.StatusPlanned, CreatedBy: auth.CreatedByHR,
			TrainingType: course.TrainingExternal, Trainees: "陳經理, 林副理, 王襄理",
		},
		{
			ID: "3", Name: "AI 工具應用分享", Company: "神耀", Department: "QA0-智能科技中心",
			Objective: "學習使用 Generative AI 提升工作效率", StartDate: "2023-12-01", EndDate: "2023-12-01", Time: "12:00-13:30",
			Duration: 1.5, ExpectedAttendees: 50, Instructor: "王小明", InstructorOrg: "內部講師",
			Status: course.StatusPlanned, CreatedBy: auth.CreatedByUser, TrainingType: course.TrainingInternal,
		},
	}
}

// seed inserts the initial accounts and, when the course table is empty or
// clear is set, the sample courses. Existing accounts are left untouched.
func seed(ctx context.Context, db *gorm.DB, clear bool, bcryptCost int, out io.Writer) error {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := userPostgres.NewUserRepository(db)
	for _, u := range seedUsers() {
		u.PasswordHash = string(hash)
		created, err := users.SeedUser(ctx, &u)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		if created {
			fmt.Fprintln(out, "Seeded user:", u.Username)
		} else {
			fmt.Fprintln(out, "user already exists:", u.Username)
		}
	}

	courses := coursePostgres.NewCourseRepository(db)
	existing, err := courses.ListAll(ctx)
	if err != nil {
		return err
	}
	if clear && len(existing) > 0 {
		ids := make([]string, 0, len(existing))
		for _, c := range existing {
			ids = append(ids, c.ID)
		}
		if err := courses.BatchDelete(ctx, ids); err != nil {
			return fmt.Errorf("clear courses: %w", err)
		}
		fmt.Fprintln(out, "Cleared courses:", len(ids))
		existing = nil
	}
	if len(existing) > 0 {
		fmt.Fprintln(out, "courses already present; skipping sample courses")
		return nil
	}

	samples := seedCourses()
	if err := courses.BatchUpsert(ctx, samples); err != nil {
		return fmt.Errorf("seed courses: %w", err)
	}
	fmt.Fprintln(out, "Seeded courses:", len(samples))
	return nil
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing courses before seeding")
}
