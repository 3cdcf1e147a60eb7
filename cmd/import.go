package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	authPostgres "github.com/frahmantamala/training-management/internal/auth/postgres"
	coursePostgres "github.com/frahmantamala/training-management/internal/course/postgres"
	"github.com/frahmantamala/training-management/internal/importer"
	"github.com/frahmantamala/training-management/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	importFile     string
	importUsername string
	importDryRun   bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import courses from a CSV file",
	Long:  `Run the batch importer on a file on behalf of a user, print the accepted/rejected report and commit the accepted rows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		input, err := readImportFile(importFile)
		if err != nil {
			return err
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		p, err := principalFor(cmd.Context(), db.Gorm, importUsername)
		if err != nil {
			return err
		}

		var committer importer.Committer
		if !importDryRun {
			committer = importer.NewRepositoryCommitter(coursePostgres.NewCourseRepository(db.Gorm))
		}
		_, err = runImport(cmd.Context(), input, p, committer, cmd.OutOrStdout())
		return err
	},
}

// readImportFile returns the text of a CSV file or of the first sheet of an
// .xlsx workbook.
func readImportFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if importer.IsWorkbook(path, "") {
		return importer.WorkbookText(f)
	}
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(raw), nil
}

// principalFor loads the account a CLI command acts as.
func principalFor(ctx context.Context, db *gorm.DB, username string) (*auth.Principal, error) {
	cred, err := authPostgres.NewRepository(db).GetCredentialByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, fmt.Errorf("unknown user %q", username)
		}
		return nil, err
	}
	return cred.Principal, nil
}

// runImport previews input for p, writes the report to out and commits the
// accepted rows through committer. A nil committer only previews.
func runImport(ctx context.Context, input string, p *auth.Principal, committer importer.Committer, out io.Writer) (internal.BatchResult, error) {
	pipeline := importer.NewPipeline(importer.NewNormalizer(time.Now, uuid.NewString), logger.LoggerWrapper())
	preview, err := pipeline.Run(input, p)
	if err != nil {
		return internal.BatchResult{}, err
	}

	writeImportReport(out, preview)

	if committer == nil || len(preview.Accepted) == 0 {
		return internal.BatchResult{}, nil
	}
	result, err := committer.BatchUpsert(ctx, preview.Courses())
	if err != nil {
		return result, err
	}
	fmt.Fprintf(out, "committed: %d succeeded, %d failed\n", result.Succeeded, result.Failed)
	return result, nil
}

func writeImportReport(out io.Writer, preview *importer.Preview) {
	fmt.Fprintf(out, "accepted: %d, rejected: %d\n", len(preview.Accepted), len(preview.Rejected))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range preview.Accepted {
		warning := ""
		if e.DateOrderWarning {
			warning = "end date before start date"
		}
		fmt.Fprintf(tw, "  row %d\tOK\t%s\t%s/%s\t%s\n", e.Row, e.Course.Name, e.Course.Company, e.Course.Department, warning)
	}
	for _, r := range preview.Rejected {
		fmt.Fprintf(tw, "  row %d\tREJECTED\t%s\t%s\t\n", r.Row, r.Name, r.Reason)
	}
	_ = tw.Flush()
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV or .xlsx file to import")
	importCmd.Flags().StringVarP(&importUsername, "username", "u", "", "account the import runs as")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "print the report without committing")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("username")
}
