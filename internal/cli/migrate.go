package cli

import (
	"github.com/spf13/cobra"
)

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rebuild the MongoDB collections from the PostgreSQL source",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.Context())
		},
	}
}
