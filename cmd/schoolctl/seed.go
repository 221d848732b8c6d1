package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/school-admin/internal/config"
	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/service"
	"github.com/pribylovaa/school-admin/internal/storage/postgres"
)

const defaultAdminEmail = "admin@daralkaram.com"

// userCreator — часть сервиса, нужная seed-admin.
type userCreator interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*models.UserView, error)
}

func newSeedAdminCommand() *cobra.Command {
	var (
		configPath string
		in         = service.CreateUserInput{Role: models.RoleAdmin}
	)

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the initial ADMIN account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
			cancel()
			if err != nil {
				return err
			}
			defer str.Close()

			return seedAdmin(ctx, service.New(str, cfg.Auth, nil), in, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&in.Email, "email", defaultAdminEmail, "Admin email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Admin phone (optional)")
	cmd.Flags().StringVar(&in.Name, "name", "System Administrator", "Admin display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "Admin password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// seedAdmin создаёт администратора; существующая учётная запись не считается ошибкой.
func seedAdmin(ctx context.Context, users userCreator, in service.CreateUserInput, out io.Writer) error {
	in.Role = models.RoleAdmin

	view, err := users.CreateUser(ctx, in)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			fmt.Fprintln(out, "admin already exists, nothing to do")
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "admin created: id=%s\n", view.ID)
	return nil
}
