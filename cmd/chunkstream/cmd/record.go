package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tushartg/chunkstream/pkg/recorder"
	"github.com/tushartg/chunkstream/pkg/storage"
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record [flags] -- <command> [args...]",
	Short: "Run a command and capture its stdin and stdout",
	Long: `Run a command with its stdin and stdout teed through recorders.
Both streams pass through unchanged while every observed byte is
captured into gzip recordings under the spool directory, and both
recordings are registered in the catalog.

Example:
  chunkstream record --name search -- ./searchcommand __EXECUTE__`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromContext(cmd)
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = fmt.Sprintf("%s-%s", filepath.Base(args[0]), time.Now().UTC().Format("20060102T150405Z"))
		}

		inPath := filepath.Join(cfg.SpoolDir, name+"-in.gz")
		outPath := filepath.Join(cfg.SpoolDir, name+"-out.gz")

		input, err := recorder.NewReaderRecorder(inPath, os.Stdin)
		if err != nil {
			return fmt.Errorf("opening input recording: %w", err)
		}
		output, err := recorder.NewWriterRecorder(outPath, os.Stdout)
		if err != nil {
			input.Close()
			return fmt.Errorf("opening output recording: %w", err)
		}

		child := exec.Command(args[0], args[1:]...)
		child.Stdin = input
		child.Stdout = output
		child.Stderr = os.Stderr

		runErr := child.Run()

		if err := input.Close(); err != nil {
			return fmt.Errorf("finalizing input recording: %w", err)
		}
		if err := output.Close(); err != nil {
			return fmt.Errorf("finalizing output recording: %w", err)
		}

		capturedAt := time.Now().UTC()
		catalog, err := storage.OpenCatalog(cfg.CatalogDir)
		if err != nil {
			return err
		}
		defer catalog.Close()

		for _, capture := range []struct {
			path      string
			direction string
		}{
			{inPath, "read"},
			{outPath, "write"},
		} {
			stat, err := os.Stat(capture.path)
			if err != nil {
				return err
			}
			id, err := catalog.Register(storage.RecordingInfo{
				Name:       name,
				Path:       capture.path,
				Direction:  capture.direction,
				CapturedAt: capturedAt,
				SizeBytes:  stat.Size(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "recorded %s (%s) as %s\n", capture.path, capture.direction, id)
		}

		if runErr != nil {
			return fmt.Errorf("command failed: %w", runErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringP("name", "n", "", "Base name for the recordings (default <command>-<timestamp>)")
}
