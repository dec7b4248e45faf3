package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/changeagent/internal/content"
	"github.com/spf13/cobra"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the course outline",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		repo, err := content.Load()
		if err != nil {
			return fmt.Errorf("load course content: %w", err)
		}
		course := repo.Course()
		fmt.Printf("%s (%s, %d lessons)\n", course.Title, course.EstimatedDuration, course.TotalLessons)
		fmt.Println(strings.Repeat("─", 72))

		for _, entry := range course.Lessons {
			l, ok := repo.Lesson(entry.ID)
			if !ok {
				fmt.Printf("%2d. %s  (coming soon)\n", entry.ID, entry.Title)
				continue
			}
			fmt.Printf("%2d. %-52s  %s\n", entry.ID, entry.Title, l.Duration)
			if !verbose {
				continue
			}
			for _, s := range l.SubLessons {
				fmt.Printf("      %-6s %s\n", s.ID, s.Title)
			}
			for _, a := range l.Activities {
				fmt.Printf("      %-6s %s\n", a.ID, a.Title)
			}
		}
		return nil
	},
}

func init() {
	lessonsCmd.Flags().BoolP("verbose", "v", false, "Also list sub-lessons and activities")
}
