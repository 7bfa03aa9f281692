package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"zapper/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long:  `Generate, validate or display the zapper configuration file.`,
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Write a default configuration file",
	Long:  `Write a default configuration file with placeholder TV settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}

		cfg := config.NewDefaultConfig()
		cfg.Bridge.Auth.JWTSecret = uuid.New().String()

		if err := config.SaveConfig(cfg, path); err != nil {
			return fmt.Errorf("failed to save default config: %w", err)
		}

		cmd.Printf("Default configuration saved to: %s\n", path)
		cmd.Println("Fill in tv.host (and tv.mac for wake-on-lan) before use.")
		cmd.Println("Find the TV with: zapper discover")
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		cmd.Printf("Configuration file is valid: %s\n", path)
		cmd.Printf("TV host: %s:%d\n", cfg.TV.Host, cfg.TV.Port)
		if !cfg.HasValidTV() {
			cmd.Println("  ⚠ tv.host is still the placeholder")
		}
		if cfg.HasValidMAC() {
			cmd.Printf("TV MAC: %s\n", cfg.TV.MAC)
		} else {
			cmd.Println("  ⚠ tv.mac not set, wake-on-lan unavailable")
		}
		if len(cfg.Positions) > 0 {
			cmd.Printf("Home screen position overrides: %d\n", len(cfg.Positions))
		}
		cmd.Printf("Bridge listen address: %s\n", cfg.Bridge.Listen)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Print the effective configuration",
	Long: `Print the configuration as zapper sees it, with defaults filled in
for anything the file leaves unset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadOrDefault(path)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		cmd.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGenerateCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(configCmd)
}
