package main

import (
	"fmt"
	"os"
	"strings"
	_ "time/tzdata"

	"hospicloud/cmd/bootstrap"
	deliveryHttp "hospicloud/internal/delivery/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospicloud",
		Short: "HospiCloud hospital management services",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server for one service or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("service")
			services, err := resolveServices(name)
			if err != nil {
				return err
			}

			// Initialize application with all dependencies
			app, err := bootstrap.New(services)
			if err != nil {
				logrus.Fatalf("Failed to initialize application: %v", err)
			}

			// Run the application
			app.Run()
			return nil
		},
	}
	cmd.Flags().String("service", deliveryHttp.ServiceAll,
		fmt.Sprintf("Service to serve: %s or %s", strings.Join(deliveryHttp.AllServices, ", "), deliveryHttp.ServiceAll))
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, _ := cmd.Flags().GetString("strategy")
			return bootstrap.Migrate(strategy)
		},
	}
	cmd.Flags().String("strategy", "sql", "Migration strategy: sql (embedded golang-migrate files) or auto (gorm AutoMigrate)")
	return cmd
}

func resolveServices(name string) ([]string, error) {
	if name == deliveryHttp.ServiceAll {
		return deliveryHttp.AllServices, nil
	}
	for _, s := range deliveryHttp.AllServices {
		if s == name {
			return []string{name}, nil
		}
	}
	return nil, fmt.Errorf("unknown service %q", name)
}
