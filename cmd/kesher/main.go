package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kesher-io/kesher/internal/interfaces/cli/admin"
	"github.com/kesher-io/kesher/internal/interfaces/cli/importer"
	"github.com/kesher-io/kesher/internal/interfaces/cli/migrate"
	"github.com/kesher-io/kesher/internal/interfaces/cli/server"
)

// @title Kesher API
// @version 1.0
// @description Admin API for the Kesher CRM and payments back office.
// @BasePath /api
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.

//go:generate swag init -g cmd/kesher/main.go -d ../../ -o ../../docs
func main() {
	rootCmd := &cobra.Command{
		Use:          "kesher",
		Short:        "Kesher - CRM, payments and website for course businesses",
		Long:         `Kesher runs the admin API, payment gateway webhooks, scheduled billing and the public course site.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		importer.NewCommand(),
		admin.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
