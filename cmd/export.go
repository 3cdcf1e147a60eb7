package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	coursePostgres "github.com/frahmantamala/training-management/internal/course/postgres"
	"github.com/spf13/cobra"
)

var (
	exportUsername string
	exportFormat   string
	exportOut      string
	exportFilter   course.ExportFilter
	exportType     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the courses a user can see",
	Long:  `Write every course visible to a user as CSV or XLSX, optionally narrowed by start date range and training type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		format, err := course.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		exportFilter.Type = course.TrainingType(exportType)
		if err := exportFilter.Validate(); err != nil {
			return err
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		p, err := principalFor(cmd.Context(), db.Gorm, exportUsername)
		if err != nil {
			return err
		}
		records, err := coursePostgres.NewCourseRepository(db.Gorm).ListAll(cmd.Context())
		if err != nil {
			return err
		}

		path := exportOut
		if path == "" {
			path = format.FileName(time.Now())
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()

		n, err := runExport(f, records, p, exportFilter, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d courses to %s\n", n, path)
		return nil
	},
}

// runExport writes the records p may see, narrowed by filter, and returns
// how many were written.
func runExport(w io.Writer, records []course.Course, p *auth.Principal, filter course.ExportFilter, format course.Format) (int, error) {
	courses := filter.Apply(course.FilterVisible(records, p))
	if err := course.Export(w, format, courses); err != nil {
		return 0, err
	}
	return len(courses), nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportUsername, "username", "u", "", "account whose visibility applies")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, defaults to a dated file name")
	exportCmd.Flags().StringVar(&exportFilter.From, "from", "", "earliest start date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportFilter.To, "to", "", "latest start date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportType, "type", "", "Internal or External")
	_ = exportCmd.MarkFlagRequired("username")
}
