package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/progress"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write saved progress to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		svc, err := openServices(cmd.Context(), cmd, logger.Nop())
		if err != nil {
			return err
		}
		defer svc.Close()

		name, data, err := svc.progress.Export(time.Now())
		if err != nil {
			return err
		}
		switch {
		case out == "-":
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		case out == "":
			out = name
		default:
			if info, statErr := os.Stat(out); statErr == nil && info.IsDir() {
				out = filepath.Join(out, name)
			}
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Println("Exported to", out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace saved progress with an exported JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		svc, err := openServices(cmd.Context(), cmd, logger.Nop())
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.progress.Import(cmd.Context(), data); err != nil {
			if errors.Is(err, progress.ErrInvalidProgress) {
				return fmt.Errorf("%s is not a valid progress file: %w", args[0], err)
			}
			return err
		}
		fmt.Printf("Imported progress from %s (overall %d%%).\n", args[0], svc.progress.OverallPercent())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file or directory (\"-\" for stdout)")
}
