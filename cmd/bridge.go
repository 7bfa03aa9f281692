package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"zapper/internal"
	"zapper/internal/bridge"
	"zapper/internal/config"
	"zapper/internal/logger"
)

var (
	bridgeListen   string
	bridgeTestFlag bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the HTTP bridge daemon",
	Long: `Run a local HTTP API that exposes the TV remote and the cast renderer
to scripts and home automation. Every action is recorded in a history
database, and requests can carry nonces for safe retries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Daemons always log
		logger.SetSilentMode(false)
		if debugFlag {
			logger.SetLevel("debug")
		} else {
			logger.SetLevel("info")
		}

		log := logger.New()
		log.Info().
			Str("config_path", configPath).
			Bool("debug", debugFlag).
			Bool("test", bridgeTestFlag).
			Msg("Starting bridge daemon")

		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			cfg := config.NewDefaultConfig()
			if err := config.SaveConfig(cfg, configPath); err != nil {
				log.Error().Err(err).Msg("Failed to create default config file")
				return fmt.Errorf("failed to create default config file: %w", err)
			}
			log.Info().
				Str("config_path", configPath).
				Msg("Created default configuration file. Please edit it with your TV settings.")
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if bridgeListen != "" {
			cfg.Bridge.Listen = bridgeListen
		}

		daemon, err := bridge.NewDaemon(cfg, internal.NewModeOptions(internal.WithDebug(debugFlag), internal.WithTest(bridgeTestFlag)))
		if err != nil {
			log.Error().Err(err).Msg("Failed to create bridge daemon")
			return fmt.Errorf("failed to create bridge daemon: %w", err)
		}

		// Blocks until shutdown
		if err := daemon.Start(); err != nil {
			log.Error().Err(err).Msg("Bridge daemon stopped with error")
			return fmt.Errorf("bridge daemon error: %w", err)
		}
		return nil
	},
}

var bridgeHashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Hash a password for the bridge login",
	Long: `Hash a password with argon2id for the bridge.auth.password_hash config
field. With a hash set, the bridge API requires login; without one it
accepts every request, which is only sane on loopback.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			cmd.Print("Password: ")
			if _, err := fmt.Scanln(&password); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}

		hash, err := bridge.NewPasswordService().HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		cmd.Println("Add to the config file under bridge.auth:")
		cmd.Printf("  password_hash: \"%s\"\n", hash)
		cmd.Println("Make sure bridge.auth.jwt_secret is set as well (config generate fills it in).")
		return nil
	},
}

func init() {
	bridgeCmd.Flags().StringVarP(&bridgeListen, "listen", "l", "", "listen address (overrides config)")
	bridgeCmd.Flags().BoolVar(&bridgeTestFlag, "test", false, "test mode (simulate devices, no TV required)")

	bridgeCmd.AddCommand(bridgeHashPasswordCmd)

	rootCmd.AddCommand(bridgeCmd)
}
