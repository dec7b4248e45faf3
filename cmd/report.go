package cmd

import (
	"os"
	"time"

	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/report"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the course progress report with all answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd.Context(), cmd, logger.Nop())
		if err != nil {
			return err
		}
		defer svc.Close()

		return report.Build(svc.progress, svc.puzzles, time.Now()).Render(os.Stdout)
	},
}
