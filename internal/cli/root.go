package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "travelnosql",
		Short: "travelnosql - travel bookings migration from PostgreSQL to MongoDB",
		Long: `travelnosql rebuilds a document view of the travel bookings schema.
The migrate command denormalizes the relational data into four MongoDB
collections, and the serve command exposes analytics and document lookups
over HTTP.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewMigrateCmd(), NewServeCmd())

	return rootCmd
}
