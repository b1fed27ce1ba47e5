package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"greenpark/internal/app"
	"greenpark/internal/config"
	"greenpark/internal/db"
	"greenpark/internal/service"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parkctl",
		Short:         "GreenPark operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(), vipCodeCmd(), overdueCmd(), staffCmd())
	return root
}

// getDB returns a gorm connection for schema work.
func getDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment or .env file")
	}
	return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := getDB(config.Load())
			if err != nil {
				return err
			}
			if err := gdb.AutoMigrate(db.Models()...); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(db.Models()))
			return nil
		},
	}
}

func vipCodeCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "vip-code PHONE",
		Short: "Print the VIP code a phone number gets for a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = time.Now().Year()
			}
			code, err := service.VIPCode(args[0], year)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "issuance year (default current year)")
	return cmd
}

func overdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List checked-in reservations past their check-out",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Reservations.ListOverdue(context.Background())
			if err != nil {
				return err
			}
			now := a.Reservations.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tCATEGORY\tPLATE\tCHECK-OUT\tLATE BY")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", r.Code, r.CategoryID, r.VehiclePlate,
					r.CheckOut.In(a.Config.Location).Format("2006-01-02 15:04"), now.Sub(r.CheckOut).Round(time.Minute))
			}
			return w.Flush()
		},
	}
}

func staffCmd() *cobra.Command {
	staff := &cobra.Command{Use: "staff", Short: "Manage staff accounts"}
	var email, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account (use this for the first admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			account, err := a.Auth.CreateStaff(context.Background(), email, password, db.StaffRole(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %s (id %d)\n", account.Role, account.Email, account.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "login e-mail")
	create.Flags().StringVar(&password, "password", "", "initial password")
	create.Flags().StringVar(&role, "role", string(db.RoleStaff), "staff or admin")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	staff.AddCommand(create)
	return staff
}
