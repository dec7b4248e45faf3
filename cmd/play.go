package cmd

import (
	"fmt"

	"github.com/abhisek/changeagent/internal/navigation"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the course",
	Example: `  changeagent play --skip-welcome
  changeagent play --open /lesson/1/1.2
  changeagent play --open /print-view`,
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetBool("skip-welcome")
		open, _ := cmd.Flags().GetString("open")

		route, err := navigation.ParseRoute(open)
		if err != nil {
			return fmt.Errorf("--open: %w", err)
		}
		return runApp(cmd, skip, route)
	},
}

func init() {
	playCmd.Flags().Bool("skip-welcome", false, "Go straight to the dashboard")
	playCmd.Flags().String("open", "", "Page to open, e.g. /lesson/2 or /print-view")
}
