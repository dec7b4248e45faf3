package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion per lesson",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd.Context(), cmd, logger.Nop())
		if err != nil {
			return err
		}
		defer svc.Close()

		fmt.Printf("%-4s  %-44s  %7s  %5s\n", "ID", "Lesson", "Units", "Done")
		fmt.Println(strings.Repeat("─", 66))

		for _, entry := range svc.repo.Course().Lessons {
			title := entry.Title
			if len(title) > 44 {
				title = title[:41] + "..."
			}
			if _, ok := svc.repo.Lesson(entry.ID); !ok {
				fmt.Printf("%-4d  %-44s  %7s  %5s\n", entry.ID, title, "-", "soon")
				continue
			}
			done, total := svc.progress.LessonUnits(entry.ID)
			fmt.Printf("%-4d  %-44s  %3d/%-3d  %4d%%\n",
				entry.ID, title, done, total, svc.progress.LessonPercent(entry.ID))
		}

		fmt.Println(strings.Repeat("─", 66))
		fmt.Printf("Overall: %d%%\n", svc.progress.OverallPercent())
		return nil
	},
}
