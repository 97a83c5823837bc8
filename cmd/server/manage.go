package main

import (
	"errors"

	"github.com/spf13/cobra"

	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/infrastructure/config"
	Logger "resident-directory-service/pkg/logger"
)

func newMigrateCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if mode == "" {
				mode = cfg.DBMigrationMode
			}
			if mode == "drop" {
				Logger.Warning("在drop模式下运行，将删除并重建所有表")
			}

			pool, err := openDatabase(cfg, mode)
			if err != nil {
				return err
			}
			defer pool.Close()

			Logger.Info("数据库迁移完成")
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "migration mode: auto, drop or none (default DB_MIGRATION_MODE)")
	return cmd
}

func newCreateStaffCommand() *cobra.Command {
	var username, password, email string

	cmd := &cobra.Command{
		Use:   "createstaff",
		Short: "Create a staff account or promote an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username 和 --password 为必填项")
			}

			cfg := config.GetConfig()
			pool, err := openDatabase(cfg, cfg.DBMigrationMode)
			if err != nil {
				return err
			}
			defer pool.Close()

			userService := services.NewUserService(pool.GetDB(), cfg)
			user, err := userService.CreateStaff(cmd.Context(), username, password, email)
			if err != nil {
				return err
			}

			Logger.Info("员工账户已就绪: %s (id=%d)", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "staff username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "staff password")
	cmd.Flags().StringVarP(&email, "email", "e", "", "staff email")
	return cmd
}
