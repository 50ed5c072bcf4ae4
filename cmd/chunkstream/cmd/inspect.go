package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/tushartg/chunkstream/pkg/chunk"
	"github.com/tushartg/chunkstream/pkg/codec"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Dump the chunks inside a captured stream",
	Long: `Dump every chunk of a captured record stream: header lengths, the
finished and partial flags, negotiated fieldnames, inspector diagnostics
and the row count of each body. Files ending in .gz are decompressed
first, so recordings can be inspected directly.

Example:
  chunkstream inspect recordings/search-out.gz`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showBody, _ := cmd.Flags().GetBool("body")

		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		var stream io.Reader = file
		if strings.HasSuffix(args[0], ".gz") {
			gz, err := gzip.NewReader(file)
			if err != nil {
				return fmt.Errorf("decompressing recording: %w", err)
			}
			defer gz.Close()
			stream = gz
		}

		reader := chunk.NewReader(stream)
		metadataCodec := codec.NewMetadataCodec()

		for index := 0; ; index++ {
			c, err := reader.Next()
			if errors.Is(err, io.EOF) {
				if index == 0 {
					cmd.Println("stream is empty")
				}
				return nil
			}
			if err != nil {
				return fmt.Errorf("chunk %d: %w", index, err)
			}

			rows := bytes.Count(c.Body, []byte("\n"))
			if rows > 0 {
				// The first body line is the CSV header.
				rows--
			}

			cmd.Printf("chunk %d: finished=%v partial=%v rows=%d body=%dB\n",
				index, c.Finished(), c.Partial(), rows, len(c.Body))
			if names := c.Fieldnames(); names != nil {
				cmd.Printf("  fieldnames: %s\n", strings.Join(names, ", "))
			}
			if inspector := c.Inspector(); inspector.Len() > 0 {
				encoded, err := metadataCodec.Encode(inspector)
				if err != nil {
					return fmt.Errorf("chunk %d: re-encoding inspector: %w", index, err)
				}
				cmd.Printf("  inspector: %s\n", encoded)
			}
			if showBody && len(c.Body) > 0 {
				cmd.Printf("%s", c.Body)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("body", false, "Print the CSV body of every chunk")
}
