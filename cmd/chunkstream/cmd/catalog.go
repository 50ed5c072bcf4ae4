package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tushartg/chunkstream/pkg/storage"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the recording catalog",
}

// catalogListCmd represents the catalog list command
var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered recording",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromContext(cmd)
		catalog, err := storage.OpenCatalog(cfg.CatalogDir)
		if err != nil {
			return err
		}
		defer catalog.Close()

		recordings, err := catalog.List()
		if err != nil {
			return err
		}
		if len(recordings) == 0 {
			cmd.Println("catalog is empty")
			return nil
		}

		cmd.Printf("%-29s %-20s %-5s %10s %-20s %s\n", "ID", "NAME", "DIR", "SIZE", "CAPTURED", "PATH")
		for _, info := range recordings {
			cmd.Printf("%-29s %-20s %-5s %10d %-20s %s\n",
				info.ID, info.Name, info.Direction, info.SizeBytes,
				info.CapturedAt.Format(time.RFC3339), info.Path)
		}
		return nil
	},
}

// catalogRmCmd represents the catalog rm command
var catalogRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a recording from the catalog",
	Long: `Remove a recording's catalog entry. The recording file itself is
left in the spool directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromContext(cmd)
		catalog, err := storage.OpenCatalog(cfg.CatalogDir)
		if err != nil {
			return err
		}
		defer catalog.Close()

		if err := catalog.Delete(args[0]); err != nil {
			return err
		}
		cmd.Printf("removed %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRmCmd)
}
