package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/frahmantamala/training-management/internal/organization"
	"github.com/frahmantamala/training-management/internal/user"
	userPostgres "github.com/frahmantamala/training-management/internal/user/postgres"
	"github.com/frahmantamala/training-management/pkg/logger"
	"github.com/spf13/cobra"
)

var resetPassword string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Account maintenance",
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts and their grants",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := userServiceFromConfig()
		if err != nil {
			return err
		}
		defer closeDB()

		return listUsers(cmd.Context(), svc, cmd.OutOrStdout())
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username>",
	Short: "Set a new password and force a change at next login",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := userServiceFromConfig()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := resetUserPassword(cmd.Context(), svc, args[0], resetPassword); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password reset for %s\n", args[0])
		return nil
	},
}

func userServiceFromConfig() (*user.Service, func(), error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init db: %w", err)
	}
	taxonomy := organization.NewTaxonomy(organization.FromConfig(cfg.Organization))
	svc := user.NewService(userPostgres.NewUserRepository(db.Gorm), taxonomy, cfg.Security.BCryptCost, logger.LoggerWrapper())
	return svc, func() { _ = db.Close() }, nil
}

func listUsers(ctx context.Context, svc *user.Service, out io.Writer) error {
	users, err := svc.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tROLE\tMUST CHANGE\tGRANTS")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", u.ID, u.Username, u.Name, u.Role, u.MustChangePassword, describeGrants(u))
	}
	return tw.Flush()
}

func describeGrants(u user.User) string {
	if len(u.Permissions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		if p.ViewAllDepartments {
			parts = append(parts, p.Company+":*")
			continue
		}
		parts = append(parts, p.Company+":"+strings.Join(p.AllowedDepartments, "|"))
	}
	return strings.Join(parts, ", ")
}

// resetUserPassword replaces the password of username and sets the forced
// change flag, keeping every other field.
func resetUserPassword(ctx context.Context, svc *user.Service, username, password string) error {
	users, err := svc.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username != username {
			continue
		}
		mustChange := true
		_, err := svc.Update(ctx, u.ID, user.UpdateUserDTO{
			Username:           u.Username,
			Password:           password,
			Name:               u.Name,
			Email:              u.Email,
			Role:               u.Role,
			Permissions:        u.Permissions,
			MustChangePassword: &mustChange,
		})
		return err
	}
	return fmt.Errorf("unknown user %q", username)
}

func init() {
	resetPasswordCmd.Flags().StringVarP(&resetPassword, "password", "p", "", "new password")
	_ = resetPasswordCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(resetPasswordCmd)
}
