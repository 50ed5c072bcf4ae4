package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tushartg/chunkstream/pkg/api"
	"github.com/tushartg/chunkstream/pkg/storage"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the debug HTTP server",
	Long: `Start the chunkstream debug server. It exposes the recording
catalog over a small authenticated REST API plus a /metrics endpoint
for scraping.

Example:
  chunkstream serve --port 8067`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromContext(cmd)

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}
		if apiKey, _ := cmd.Flags().GetString("api-key"); apiKey != "" {
			cfg.Server.APIKey = apiKey
		}
		if cfg.Server.APIKey == "" || cfg.Server.APIKey == "auto" {
			return fmt.Errorf("no server API key configured (run 'chunkstream init' or pass --api-key)")
		}

		catalog, err := storage.OpenCatalog(cfg.CatalogDir)
		if err != nil {
			return err
		}
		defer catalog.Close()

		return api.StartServer(catalog, api.ServerConfig{
			Port:   cfg.Server.Port,
			Bind:   cfg.Server.Bind,
			APIKey: cfg.Server.APIKey,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	serveCmd.Flags().String("api-key", "", "API key protecting the REST endpoints")
}
