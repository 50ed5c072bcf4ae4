package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/tushartg/chunkstream/pkg/storage"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <id-or-path>",
	Short: "Print the decompressed bytes of a recording",
	Long: `Print the captured bytes of a recording to stdout. The argument is
either a recording file path or a catalog id. With --verify, the
recording is compared byte for byte against a reference file instead of
being printed.

Examples:
  chunkstream replay recordings/search-out.gz
  chunkstream replay 2ZsXaB4n0fQ7mJqL1cP9eKdTgVh --verify expected.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verifyPath, _ := cmd.Flags().GetString("verify")

		path := args[0]
		if _, err := os.Stat(path); err != nil {
			// Not a file, try the catalog.
			cfg := configFromContext(cmd)
			catalog, err := storage.OpenCatalog(cfg.CatalogDir)
			if err != nil {
				return err
			}
			info, err := catalog.Get(args[0])
			catalog.Close()
			if err != nil {
				return fmt.Errorf("no such file and no such recording: %w", err)
			}
			path = info.Path
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("decompressing recording: %w", err)
		}
		defer gz.Close()

		if verifyPath == "" {
			_, err := io.Copy(cmd.OutOrStdout(), gz)
			return err
		}

		captured, err := io.ReadAll(gz)
		if err != nil {
			return err
		}
		expected, err := os.ReadFile(verifyPath)
		if err != nil {
			return err
		}
		if !bytes.Equal(captured, expected) {
			return fmt.Errorf("recording diverges from %s: %d captured bytes vs %d expected",
				verifyPath, len(captured), len(expected))
		}
		cmd.Printf("recording matches %s (%d bytes)\n", verifyPath, len(captured))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().String("verify", "", "Compare the recording against a reference file")
}
