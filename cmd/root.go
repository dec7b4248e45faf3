package cmd

import (
	"context"

	"github.com/abhisek/changeagent/internal/navigation"
	"github.com/abhisek/changeagent/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "changeagent",
	Short: "Companion for the AI-Native Change Agent course",
	Long:  "Change Agent: a terminal companion for the AI-Native Change Agent course. Work through lessons, match-up activities and reflections, with answers saved locally.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false, navigation.Route{})
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CHANGEAGENT_DB env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CHANGEAGENT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
