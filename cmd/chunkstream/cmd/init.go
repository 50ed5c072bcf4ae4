package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tushartg/chunkstream/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the chunkstream configuration",
	Long: `Create the chunkstream configuration file with a generated debug
server API key.

Example:
  chunkstream init --spool-dir /var/spool/chunkstream`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		spoolDir, _ := cmd.Flags().GetString("spool-dir")
		force, _ := cmd.Flags().GetBool("force")

		if config.ConfigExists(configPath) && !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
		}

		cfg, err := config.BootstrapConfig(configPath, spoolDir)
		if err != nil {
			return err
		}

		cmd.Printf("Configuration written to %s\n", configPath)
		cmd.Printf("Recordings spool directory: %s\n", cfg.SpoolDir)
		cmd.Printf("Debug server API key: %s\n", cfg.Server.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("spool-dir", "", "Directory for captured recordings")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
