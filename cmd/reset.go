package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all saved progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		svc, err := openServices(cmd.Context(), cmd, logger.Nop())
		if err != nil {
			return err
		}
		defer svc.Close()

		confirm := func(prompt string) bool {
			if yes {
				return true
			}
			fmt.Printf("%s [y/N] ", prompt)
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			answer := strings.ToLower(strings.TrimSpace(line))
			return answer == "y" || answer == "yes"
		}

		cleared, err := svc.progress.Clear(cmd.Context(), confirm)
		if err != nil {
			return fmt.Errorf("clear progress: %w", err)
		}
		if !cleared {
			fmt.Println("Nothing was cleared.")
			return nil
		}
		fmt.Println("All progress cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
