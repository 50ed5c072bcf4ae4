/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/tushartg/chunkstream/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chunkstream",
	Short: "chunkstream - capture, inspect and replay chunked record streams",
	Long: `chunkstream works with the "chunked 1.0" record stream format: it
captures live sessions into gzip recordings, inspects the chunks inside
a captured stream, and replays recordings for debugging.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), "config", cfg))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default ~/.config/chunkstream/config.yaml)")
}

// configFromContext pulls the loaded configuration out of the command context.
func configFromContext(cmd *cobra.Command) *config.Config {
	cfg, ok := cmd.Context().Value("config").(*config.Config)
	if !ok {
		return config.DefaultConfig()
	}
	return cfg
}
